package server

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/buaazp/fasthttprouter"
	"github.com/gagliardetto/solana-go"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/interfaces"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/vault"
)

var log *zap.Logger

func init() {
	log, _ = zap.NewProduction()
	log = log.With(zap.String("logger", "server"))
}

const (
	// SignatureHeader carries the base58 ed25519 signature of SigningMessage by the body's signer.
	SignatureHeader = "X-Signature"
	// TimestampHeader carries the unix seconds the request was signed at.
	TimestampHeader = "X-Timestamp"

	// SignatureWindow bounds how far a request timestamp may be from the server clock.
	SignatureWindow = 60 * time.Second
)

const requestTimeout = 30 * time.Second

type Server struct {
	Vault  *vault.Service
	Nonces interfaces.INonceStore
	Now    func() time.Time
	router *fasthttprouter.Router
}

// New serves svc. Signatures are claimed in nonces so each signed request runs once.
func New(svc *vault.Service, nonces interfaces.INonceStore) *Server {
	s := &Server{Vault: svc, Nonces: nonces, Now: time.Now, router: fasthttprouter.New()}
	r := s.router

	r.POST("/config", s.signed(s.initConfig))
	r.PUT("/config/fee", s.signed(s.editConfigFee))

	r.POST("/projects", s.signed(s.initProject))
	r.PUT("/projects/fee", s.signed(s.editProjectFee))
	r.POST("/projects/withdraw-fees", s.signed(s.withdrawFees))

	r.POST("/managers", s.signed(s.initManager))
	r.GET("/managers/:address", s.getManager)
	r.GET("/managers/:address/orders", s.listOrders)
	r.POST("/managers/subscription", s.signed(s.paySubscription))

	r.POST("/orders", s.signed(s.deposit))
	r.GET("/orders/:address", s.getOrder)
	r.GET("/orders/:address/quote", s.quote)
	r.POST("/orders/:address/withdraw", s.signed(s.withdraw))
	r.POST("/orders/:address/vaults", s.signed(s.initTokenVault))
	r.POST("/orders/:address/vaults/close", s.signed(s.closeTokenVault))
	r.POST("/orders/:address/swap", s.signed(s.swap))
	r.POST("/orders/:address/liquidate", s.signed(s.liquidate))

	r.GET("/health", health)
	return s
}

func (s *Server) Handler() fasthttp.RequestHandler {
	return s.router.Handler
}

func RunServer(wg *sync.WaitGroup, addr string, compress bool, h fasthttp.RequestHandler) {
	defer wg.Done()
	if compress {
		h = fasthttp.CompressHandler(h)
	}
	log.Info("API listening", zap.String("addr", addr))
	if err := fasthttp.ListenAndServe(addr, h); err != nil {
		log.Fatal("ListenAndServe", zap.Error(err))
	}
}

type envelope struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Code    int         `json:"code,omitempty"`
	Name    string      `json:"name,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, body envelope) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	if err := json.NewEncoder(ctx).Encode(body); err != nil {
		log.Error("encode response", zap.Error(err))
	}
}

func ok(ctx *fasthttp.RequestCtx, data interface{}) {
	writeJSON(ctx, fasthttp.StatusOK, envelope{Status: "OK", Data: data})
}

// statusOf maps an error to an HTTP status by its kind.
func statusOf(code errcode.Code) int {
	switch code {
	case errcode.InvalidSignature:
		return fasthttp.StatusUnauthorized
	case errcode.AccountNotFound:
		return fasthttp.StatusNotFound
	}
	switch code.Kind() {
	case errcode.KindAuthorization:
		return fasthttp.StatusForbidden
	case errcode.KindValidation:
		return fasthttp.StatusUnprocessableEntity
	case errcode.KindState:
		return fasthttp.StatusConflict
	}
	return fasthttp.StatusInternalServerError
}

func fail(ctx *fasthttp.RequestCtx, err error) {
	code, ok := errcode.CodeOf(err)
	if !ok {
		log.Error("request failed", zap.ByteString("path", ctx.Path()), zap.Error(err))
		writeJSON(ctx, fasthttp.StatusInternalServerError, envelope{Status: "ERR", Message: err.Error()})
		return
	}
	writeJSON(ctx, statusOf(code), envelope{
		Status:  "ERR",
		Code:    int(code),
		Name:    code.String(),
		Message: err.Error(),
	})
}

func badRequest(ctx *fasthttp.RequestCtx, message string) {
	writeJSON(ctx, fasthttp.StatusBadRequest, envelope{Status: "ERR", Message: message})
}

// SigningMessage is what a caller signs: method, path, timestamp and the raw body.
func SigningMessage(method, path string, timestamp int64, body []byte) []byte {
	head := method + " " + path + "\n" + strconv.FormatInt(timestamp, 10) + "\n"
	return append([]byte(head), body...)
}

// signed verifies the request signature of the body's signer, rejects stale timestamps
// and signatures already used, then calls fn.
func (s *Server) signed(fn func(c context.Context, ctx *fasthttp.RequestCtx)) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		body := ctx.PostBody()
		var head struct {
			Signer solana.PublicKey `json:"signer"`
		}
		if err := json.Unmarshal(body, &head); err != nil {
			badRequest(ctx, "invalid body: "+err.Error())
			return
		}
		timestamp, err := strconv.ParseInt(string(ctx.Request.Header.Peek(TimestampHeader)), 10, 64)
		if err != nil {
			fail(ctx, errcode.Newf(errcode.InvalidSignature, "missing or malformed %s", TimestampHeader))
			return
		}
		if skew := s.Now().Sub(time.Unix(timestamp, 0)); skew > SignatureWindow || skew < -SignatureWindow {
			fail(ctx, errcode.Newf(errcode.InvalidSignature, "request signed %s away from server time", skew))
			return
		}
		message := SigningMessage(string(ctx.Method()), string(ctx.Path()), timestamp, body)
		sig, err := solana.SignatureFromBase58(string(ctx.Request.Header.Peek(SignatureHeader)))
		if err != nil || head.Signer.IsZero() || !sig.Verify(head.Signer, message) {
			fail(ctx, errcode.Newf(errcode.InvalidSignature, "request is not signed by %s", head.Signer))
			return
		}

		c, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		fresh, err := s.Nonces.Claim(c, sig.String(), 2*SignatureWindow)
		if err != nil {
			fail(ctx, err)
			return
		}
		if !fresh {
			fail(ctx, errcode.Newf(errcode.InvalidSignature, "request already processed"))
			return
		}
		fn(c, ctx)
	}
}

func decode(ctx *fasthttp.RequestCtx, into interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), into); err != nil {
		badRequest(ctx, "invalid body: "+err.Error())
		return false
	}
	return true
}

func pathKey(ctx *fasthttp.RequestCtx) (solana.PublicKey, bool) {
	raw, _ := ctx.UserValue("address").(string)
	k, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		badRequest(ctx, "invalid address "+raw)
		return solana.PublicKey{}, false
	}
	return k, true
}

// orderFromPath sets order from the path. An order already named in the body must match.
func orderFromPath(ctx *fasthttp.RequestCtx, order *solana.PublicKey) bool {
	address, ok := pathKey(ctx)
	if !ok {
		return false
	}
	if !order.IsZero() && !order.Equals(address) {
		badRequest(ctx, "body order "+order.String()+" does not match path")
		return false
	}
	*order = address
	return true
}

func respond(ctx *fasthttp.RequestCtx, data interface{}, err error) {
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, data)
}

func health(ctx *fasthttp.RequestCtx) {
	data := map[string]interface{}{}
	if vm, err := mem.VirtualMemory(); err == nil {
		data["memoryUsedPercent"] = vm.UsedPercent
	}
	if uptime, err := host.Uptime(); err == nil {
		data["hostUptime"] = uptime
	}
	ok(ctx, data)
}
