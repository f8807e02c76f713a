package server

import (
	"context"

	"github.com/valyala/fasthttp"

	"gitlab.com/crypto_project/core/delegate_vault/src/service/vault"
)

func (s *Server) initConfig(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.InitConfigRequest
	if decode(ctx, &req) {
		res, err := s.Vault.InitConfig(c, req)
		respond(ctx, res, err)
	}
}

func (s *Server) editConfigFee(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.EditConfigFeeRequest
	if decode(ctx, &req) {
		res, err := s.Vault.EditConfigFee(c, req)
		respond(ctx, res, err)
	}
}

func (s *Server) initProject(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.InitProjectRequest
	if decode(ctx, &req) {
		res, err := s.Vault.InitProject(c, req)
		respond(ctx, res, err)
	}
}

func (s *Server) editProjectFee(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.EditProjectFeeRequest
	if decode(ctx, &req) {
		res, err := s.Vault.EditProjectFee(c, req)
		respond(ctx, res, err)
	}
}

func (s *Server) withdrawFees(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.WithdrawFeesRequest
	if decode(ctx, &req) {
		res, err := s.Vault.WithdrawFees(c, req)
		respond(ctx, res, err)
	}
}

func (s *Server) initManager(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.InitManagerRequest
	if decode(ctx, &req) {
		res, err := s.Vault.InitManager(c, req)
		respond(ctx, res, err)
	}
}

func (s *Server) getManager(ctx *fasthttp.RequestCtx) {
	address, ok := pathKey(ctx)
	if !ok {
		return
	}
	res, err := s.Vault.Manager(context.Background(), address)
	respond(ctx, res, err)
}

func (s *Server) listOrders(ctx *fasthttp.RequestCtx) {
	address, ok := pathKey(ctx)
	if !ok {
		return
	}
	res, err := s.Vault.Orders(context.Background(), address)
	respond(ctx, res, err)
}

func (s *Server) paySubscription(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.PaySubscriptionRequest
	if decode(ctx, &req) {
		res, err := s.Vault.PaySubscription(c, req)
		respond(ctx, res, err)
	}
}

func (s *Server) deposit(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.DepositRequest
	if decode(ctx, &req) {
		res, err := s.Vault.Deposit(c, req)
		respond(ctx, res, err)
	}
}

func (s *Server) getOrder(ctx *fasthttp.RequestCtx) {
	address, ok := pathKey(ctx)
	if !ok {
		return
	}
	res, err := s.Vault.Order(context.Background(), address)
	respond(ctx, res, err)
}

func (s *Server) quote(ctx *fasthttp.RequestCtx) {
	address, ok := pathKey(ctx)
	if !ok {
		return
	}
	res, err := s.Vault.QuoteWithdraw(context.Background(), address)
	respond(ctx, res, err)
}

// The order routes take the order from the path, which is part of the signed message.

func (s *Server) withdraw(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.WithdrawRequest
	if decode(ctx, &req) && orderFromPath(ctx, &req.Order) {
		res, err := s.Vault.Withdraw(c, req)
		respond(ctx, res, err)
	}
}

func (s *Server) initTokenVault(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.TokenVaultRequest
	if decode(ctx, &req) && orderFromPath(ctx, &req.Order) {
		res, err := s.Vault.InitTokenVault(c, req)
		respond(ctx, res, err)
	}
}

func (s *Server) closeTokenVault(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.TokenVaultRequest
	if decode(ctx, &req) && orderFromPath(ctx, &req.Order) {
		res, err := s.Vault.CloseTokenVault(c, req)
		respond(ctx, res, err)
	}
}

func (s *Server) swap(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.SwapRequest
	if decode(ctx, &req) && orderFromPath(ctx, &req.Order) {
		res, err := s.Vault.Swap(c, req)
		respond(ctx, res, err)
	}
}

func (s *Server) liquidate(c context.Context, ctx *fasthttp.RequestCtx) {
	var req vault.LiquidateRequest
	if decode(ctx, &req) && orderFromPath(ctx, &req.Order) {
		res, err := s.Vault.Liquidate(c, req)
		respond(ctx, res, err)
	}
}
