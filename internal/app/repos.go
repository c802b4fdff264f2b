package app

import (
	"gorm.io/gorm"

	connectionrepo "github.com/bridgeos/bridgeos/internal/data/repos/connection"
	feedbackrepo "github.com/bridgeos/bridgeos/internal/data/repos/feedback"
	managerrepo "github.com/bridgeos/bridgeos/internal/data/repos/manager"
	messagerepo "github.com/bridgeos/bridgeos/internal/data/repos/message"
	subscriptionrepo "github.com/bridgeos/bridgeos/internal/data/repos/subscription"
	taskrepo "github.com/bridgeos/bridgeos/internal/data/repos/task"
	usagerepo "github.com/bridgeos/bridgeos/internal/data/repos/usage"
	userrepo "github.com/bridgeos/bridgeos/internal/data/repos/user"
	webhookeventrepo "github.com/bridgeos/bridgeos/internal/data/repos/webhookevent"
	workerrepo "github.com/bridgeos/bridgeos/internal/data/repos/worker"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

// Repos bundles one instance of every table-level repository, mirroring
// the teacher's wireRepos/Repos bundling in internal/app/repos.go.
type Repos struct {
	Users         userrepo.Repo
	Managers      managerrepo.Repo
	Workers       workerrepo.Repo
	Connections   connectionrepo.Repo
	Messages      messagerepo.Repo
	Tasks         taskrepo.Repo
	Subscriptions subscriptionrepo.Repo
	Usage         usagerepo.Repo
	Feedback      feedbackrepo.Repo
	WebhookEvents webhookeventrepo.Repo
}

func wireRepos(gdb *gorm.DB, log *logger.Logger) Repos {
	log.Info("wiring repos")
	return Repos{
		Users:         userrepo.NewRepo(gdb, log),
		Managers:      managerrepo.NewRepo(gdb, log),
		Workers:       workerrepo.NewRepo(gdb, log),
		Connections:   connectionrepo.NewRepo(gdb, log),
		Messages:      messagerepo.NewRepo(gdb, log),
		Tasks:         taskrepo.NewRepo(gdb, log),
		Subscriptions: subscriptionrepo.NewRepo(gdb, log),
		Usage:         usagerepo.NewRepo(gdb, log),
		Feedback:      feedbackrepo.NewRepo(gdb, log),
		WebhookEvents: webhookeventrepo.NewRepo(gdb, log),
	}
}
