package editor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// Journal is an api.Transactions that keeps a log of closed commands. It
// does not record enough to undo an edit; it exists so callers can audit
// edit boundaries.
type Journal struct {
	mu     sync.Mutex
	seq    int64
	open   map[int64]*api.Command
	closed []Entry
	logger *slog.Logger
}

// Entry is one closed command.
type Entry struct {
	ID       int64
	Label    string
	Scope    string
	Started  time.Time
	Duration time.Duration
}

var _ api.Transactions = (*Journal)(nil)

func NewJournal(logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{open: make(map[int64]*api.Command), logger: logger}
}

func (j *Journal) Begin(scope *tree.Node, label string) *api.Command {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seq++
	cmd := &api.Command{ID: j.seq, Label: label, Scope: scope, Started: time.Now()}
	j.open[cmd.ID] = cmd
	return cmd
}

func (j *Journal) End(cmd *api.Command) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.open[cmd.ID]; !ok {
		j.logger.Warn("journal: end of unknown command",
			slog.Int64("id", cmd.ID),
			slog.String("label", cmd.Label),
		)
		return
	}
	delete(j.open, cmd.ID)

	entry := Entry{
		ID:       cmd.ID,
		Label:    cmd.Label,
		Started:  cmd.Started,
		Duration: time.Since(cmd.Started),
	}
	if cmd.Scope != nil {
		entry.Scope = cmd.Scope.Name()
	}
	j.closed = append(j.closed, entry)
}

// Open returns the number of commands that were begun but not ended.
func (j *Journal) Open() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.open)
}

// Entries returns the closed commands, oldest first.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.closed))
	copy(out, j.closed)
	return out
}

// Labels returns the labels of the closed commands, oldest first.
func (j *Journal) Labels() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, 0, len(j.closed))
	for _, e := range j.closed {
		out = append(out, e.Label)
	}
	return out
}
