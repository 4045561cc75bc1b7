// Package editor implements the structural edits of a process tree: copy,
// paste, clone, cut, delete and move, plus the small edits used to build a
// tree. Every mutating edit checks its preconditions first and only then
// opens a command through api.Transactions, so a rejected edit leaves
// nothing behind.
//
// Edits are not safe for concurrent use on the same tree.
package editor

import (
	"context"
	"log/slog"

	"github.com/petrijr/proctree/internal/clipboard"
	"github.com/petrijr/proctree/internal/persistence"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

// Confirmer asks the user to approve a destructive edit.
type Confirmer interface {
	Confirm(ctx context.Context, nodes []*tree.Node) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, nodes []*tree.Node) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, nodes []*tree.Node) (bool, error) {
	return f(ctx, nodes)
}

// Config describes how to construct an Editor. Zero fields get in-memory
// defaults; a nil Confirmer approves every delete.
type Config struct {
	Clipboard    api.Clipboard
	Serializer   api.Serializer
	Factory      tree.Factory
	Transactions api.Transactions
	Confirmer    Confirmer
	Observer     api.Observer
	Logger       *slog.Logger
}

// Editor applies structural edits to process trees.
type Editor struct {
	clipboard api.Clipboard
	ser       api.Serializer
	factory   tree.Factory
	tx        api.Transactions
	confirm   Confirmer
	observer  api.Observer
	logger    *slog.Logger
}

// New creates an Editor.
func New(cfg Config) *Editor {
	e := &Editor{
		clipboard: cfg.Clipboard,
		ser:       cfg.Serializer,
		factory:   cfg.Factory,
		tx:        cfg.Transactions,
		confirm:   cfg.Confirmer,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
	}
	if e.clipboard == nil {
		e.clipboard = clipboard.NewInMemory()
	}
	if e.ser == nil {
		e.ser = persistence.GobSerializer{}
	}
	if e.tx == nil {
		e.tx = &api.NoopTransactions{}
	}
	if e.observer == nil {
		e.observer = api.NoopObserver{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Clipboard returns the clipboard the editor copies to and pastes from.
func (e *Editor) Clipboard() api.Clipboard { return e.clipboard }

func (e *Editor) begin(scope *tree.Node, label string) *api.Command {
	e.logger.Debug("edit begin", slog.String("label", label))
	return e.tx.Begin(scope, label)
}

// commit closes cmd and reports the result to the observer.
func (e *Editor) commit(ctx context.Context, cmd *api.Command, res *api.EditResult) {
	e.tx.End(cmd)
	e.report(ctx, cmd.Label, res.Diagnostics)
	e.observer.OnEditCommitted(ctx, cmd.Label, cmd.Scope)
}

func (e *Editor) report(ctx context.Context, op string, diags []error) {
	for _, d := range diags {
		e.observer.OnDiagnostic(ctx, op, d)
	}
}

func requireReady(op string, n *tree.Node) error {
	if n == nil {
		return api.Invalid(op, "", tree.ErrNilNode)
	}
	if !n.Ready() {
		return api.Invalid(op, n.Name(), api.ErrNotReady)
	}
	return nil
}

// subtreeIDs returns the UUIDs of n and its descendants.
func subtreeIDs(n *tree.Node) map[string]bool {
	ids := map[string]bool{n.UUID(): true}
	for _, d := range n.Descendants() {
		ids[d.UUID()] = true
	}
	return ids
}
