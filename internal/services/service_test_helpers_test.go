package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/heavenboards/user-service/internal/auth"
	"github.com/heavenboards/user-service/internal/database/testutil"
	"github.com/heavenboards/user-service/internal/models"
	"github.com/heavenboards/user-service/internal/projects"
	"github.com/heavenboards/user-service/internal/repository"
	"github.com/heavenboards/user-service/pkg/crypto"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	store, err := repository.New(testutil.MustOpenTestDB(t, testutil.WithAutoMigrate()))
	require.NoError(t, err)
	return store
}

// newFileTestStore backs the store with a file database so goroutines get
// separate connections.
func newFileTestStore(t *testing.T) *repository.Store {
	t.Helper()
	store, err := repository.New(testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(), testutil.WithFile()))
	require.NoError(t, err)
	return store
}

// staleLookup makes the next query against table miss, as if it ran before a
// concurrent writer committed. Counts report zero and row lookups report
// gorm.ErrRecordNotFound. Later queries are untouched.
type staleLookup struct {
	armed atomic.Bool
}

func installStaleLookup(t *testing.T, store *repository.Store, table string) *staleLookup {
	t.Helper()
	stale := &staleLookup{}
	err := store.DB().Callback().Query().After("gorm:query").Register("test:stale_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table != table || !stale.armed.CompareAndSwap(true, false) {
			return
		}
		if count, ok := tx.Statement.Dest.(*int64); ok {
			*count = 0
			return
		}
		tx.Statement.RowsAffected = 0
		_ = tx.AddError(gorm.ErrRecordNotFound)
	})
	require.NoError(t, err)
	return stale
}

func (s *staleLookup) arm() { s.armed.Store(true) }

func newTestHasher() crypto.PasswordHasher {
	return crypto.NewBcryptHasher(bcrypt.MinCost)
}

func seedUser(t *testing.T, store *repository.Store, username string) *models.User {
	t.Helper()
	hash, err := newTestHasher().Hash("Secret123!")
	require.NoError(t, err)

	user := &models.User{
		Username:  username,
		Password:  hash,
		Role:      models.RoleUser,
		FirstName: "First " + username,
		LastName:  "Last " + username,
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

// auditEntriesFor returns the audit entries attributed to userID, newest first.
func auditEntriesFor(t *testing.T, store *repository.Store, userID string) []models.AuditLog {
	t.Helper()
	var entries []models.AuditLog
	require.NoError(t, store.DB().Where("user_id = ?", userID).Order("created_at DESC").Find(&entries).Error)
	return entries
}

func identityOf(user *models.User) auth.Identity {
	return auth.Identity{UserID: user.ID, Username: user.Username, Role: string(user.Role)}
}

type fakeDirectory struct {
	mu        sync.Mutex
	projects  map[string]*projects.Project
	findErr   error
	updateErr error
	finds     int
	updates   []projects.Project
}

func newFakeDirectory(items ...*projects.Project) *fakeDirectory {
	d := &fakeDirectory{projects: make(map[string]*projects.Project)}
	for _, p := range items {
		d.projects[p.ID] = p
	}
	return d
}

func (d *fakeDirectory) FindProjectByID(_ context.Context, id string) (*projects.Project, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finds++
	if d.findErr != nil {
		return nil, d.findErr
	}
	project, ok := d.projects[id]
	if !ok {
		return nil, projects.ErrProjectNotFound
	}
	cpy := *project
	cpy.Users = append([]projects.Member(nil), project.Users...)
	return &cpy, nil
}

func (d *fakeDirectory) UpdateProject(_ context.Context, project *projects.Project) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.updateErr != nil {
		return d.updateErr
	}
	cpy := *project
	cpy.Users = append([]projects.Member(nil), project.Users...)
	d.updates = append(d.updates, cpy)
	d.projects[project.ID] = &cpy
	return nil
}

func (d *fakeDirectory) findCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.finds
}
