package api

import (
	"sync/atomic"
	"time"

	"github.com/petrijr/proctree/pkg/tree"
)

// Command is the handle of an open transactional edit.
type Command struct {
	ID      int64
	Label   string
	Scope   *tree.Node
	Started time.Time
}

// Transactions groups the mutations of one compound edit into a single undo
// unit. Begin and End are always paired.
type Transactions interface {
	Begin(scope *tree.Node, label string) *Command
	End(cmd *Command)
}

// NoopTransactions hands out command handles without recording anything.
type NoopTransactions struct {
	seq atomic.Int64
}

func (t *NoopTransactions) Begin(scope *tree.Node, label string) *Command {
	return &Command{ID: t.seq.Add(1), Label: label, Scope: scope, Started: time.Now()}
}

func (t *NoopTransactions) End(*Command) {}
