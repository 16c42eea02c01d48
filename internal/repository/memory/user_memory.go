package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
)

var _ repository.UserRepository = (*MemoryUserRepository)(nil)

// MemoryUserRepository implements UserRepository in memory (NOT FOR PRODUCTION)
type MemoryUserRepository struct {
	users  map[string]*models.Account
	byID   map[int64]*models.Account
	nextID int64
	mutex  sync.RWMutex
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]*models.Account),
		byID:  make(map[int64]*models.Account),
	}
}

// CreateUser registers an account. Used for seeding and tests.
func (r *MemoryUserRepository) CreateUser(ctx context.Context, email, credentialHash string) (*models.Account, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := strings.ToLower(email)
	if _, exists := r.users[key]; exists {
		return nil, repository.ErrUserExists
	}

	r.nextID++
	account := &models.Account{
		ID:             r.nextID,
		Email:          email,
		CredentialHash: credentialHash,
	}
	r.users[key] = account
	r.byID[account.ID] = account

	copied := *account
	return &copied, nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	account, exists := r.users[strings.ToLower(email)]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *MemoryUserRepository) UpdateCredential(ctx context.Context, accountID int64, credentialHash string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	account, exists := r.byID[accountID]
	if !exists {
		return repository.ErrUserNotFound
	}
	account.CredentialHash = credentialHash
	return nil
}
