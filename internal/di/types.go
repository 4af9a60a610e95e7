// Package di wires databases, repositories, services and jobs into a Container.
package di

import (
	"github.com/finlit/finlit/internal/clients/firestore"
	"github.com/finlit/finlit/internal/clients/gemini"
	"github.com/finlit/finlit/internal/database"
	"github.com/finlit/finlit/internal/events"
	"github.com/finlit/finlit/internal/modules/catalog"
	"github.com/finlit/finlit/internal/modules/chat"
	"github.com/finlit/finlit/internal/modules/content"
	"github.com/finlit/finlit/internal/modules/market"
	"github.com/finlit/finlit/internal/reliability"
	"github.com/finlit/finlit/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is created by Wire and passed to the server.
type Container struct {
	CatalogDB  *database.DB // Video catalog (standard profile)
	SessionsDB *database.DB // Market game sessions (cache profile)

	SessionRepo  *market.SessionRepository
	CatalogRepo  *catalog.Repository // nil when the catalog lives in Firestore
	CatalogStore catalog.Store

	FirestoreClient *firestore.Client // nil unless CATALOG_BACKEND=firestore
	GeminiClient    *gemini.Client

	EventBus       *events.Bus
	EventManager   *events.Manager
	CatalogService *catalog.Service
	Sessions       *market.Sessions
	ChatRelay      *chat.Relay
	ContentService *content.Service
	BackupService  *reliability.BackupService // nil when backups are disabled

	Scheduler *scheduler.Scheduler
}

// Databases returns the open databases by name
func (c *Container) Databases() map[string]*database.DB {
	dbs := make(map[string]*database.DB, 2)
	if c.CatalogDB != nil {
		dbs["catalog"] = c.CatalogDB
	}
	if c.SessionsDB != nil {
		dbs["sessions"] = c.SessionsDB
	}
	return dbs
}

// Close releases the databases
func (c *Container) Close() {
	for _, db := range c.Databases() {
		db.Close()
	}
}

// JobInstances holds the scheduled jobs for manual triggering via API
type JobInstances struct {
	CheckDatabases     scheduler.Job
	CheckWALCheckpoint scheduler.Job
	PurgeIdle          scheduler.Job
	DailyMaintenance   scheduler.Job
	Backup             scheduler.Job // nil when backups are disabled
}

// All returns the registered jobs keyed by name
func (j *JobInstances) All() map[string]scheduler.Job {
	out := map[string]scheduler.Job{}
	for _, job := range []scheduler.Job{j.CheckDatabases, j.CheckWALCheckpoint, j.PurgeIdle, j.DailyMaintenance, j.Backup} {
		if job != nil {
			out[job.Name()] = job
		}
	}
	return out
}
