package repo_test

import (
	"testing"

	"github.com/hamed0406/slotwatch/internal/repo"
	"github.com/hamed0406/slotwatch/internal/repo/file"
	"github.com/hamed0406/slotwatch/internal/repo/memory"
	pg "github.com/hamed0406/slotwatch/internal/repo/postgres"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.SendLogStore = memory.New()
	var _ repo.SendLogStore = file.New("data_store.json")
	var _ repo.SendLogStore = (*pg.Store)(nil)
}
