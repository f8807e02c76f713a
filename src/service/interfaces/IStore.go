package interfaces

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

// IStore keeps the vault records. Getters return an errcode AccountNotFound when the
// record does not exist. Everything called with the ctx handed to fn by RunInTransaction
// commits or rolls back together with fn's result.
type IStore interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	GetConfig(ctx context.Context) (*models.Config, error)
	SaveConfig(ctx context.Context, config *models.Config) error

	GetProject(ctx context.Context, address solana.PublicKey) (*models.Project, error)
	SaveProject(ctx context.Context, project *models.Project) error

	GetManager(ctx context.Context, address solana.PublicKey) (*models.Manager, error)
	SaveManager(ctx context.Context, manager *models.Manager) error

	GetOrder(ctx context.Context, address solana.PublicKey) (*models.Order, error)
	SaveOrder(ctx context.Context, order *models.Order) error
	DeleteOrder(ctx context.Context, address solana.PublicKey) error
	ListOrders(ctx context.Context, manager solana.PublicKey) ([]*models.Order, error)
}
