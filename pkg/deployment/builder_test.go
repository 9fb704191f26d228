// pkg/deployment/builder_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test ledger insertion, chain resolution and record finalization

package deployment

import (
	"fmt"
	"testing"
	"time"

	"github.com/arthur-debert/punktf/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestBuilderAddItemAndChild(t *testing.T) {
	b := NewBuilder()
	base := types.Dotfile{Path: "base", Priority: types.NewPriority(2)}

	b.AddItem("/home/demo/base", base, Success())
	b.AddChild("/home/demo/base/x", "/home/demo/base", Success())
	b.AddChild("/home/demo/base/y", "/home/demo/base", Success())

	assert.Equal(t, 3, b.Len())
	assert.True(t, b.Contains("/home/demo/base/x"))
	assert.True(t, b.Contains("/home/demo/base/./y"), "paths are cleaned")

	item, ok := b.Get("/home/demo/base/x")
	require.True(t, ok)
	assert.Equal(t, KindChild, item.Kind)
	assert.Equal(t, "/home/demo/base", item.Parent)

	got, ok := b.Item("/home/demo/base/y")
	require.True(t, ok)
	assert.Equal(t, "base", got.Path)

	prio, ok := b.Priority("/home/demo/base/x")
	require.True(t, ok)
	require.NotNil(t, prio)
	assert.Equal(t, types.Priority(2), *prio)

	assert.Equal(t, []string{"/home/demo/base/x", "/home/demo/base/y"}, b.Children("/home/demo/base/"))
	assert.Empty(t, b.Children("/home/demo/base/x"))
}

func TestBuilderLastWriteWins(t *testing.T) {
	b := NewBuilder()
	b.AddItem("/t/a", types.Dotfile{Path: "a"}, Failed("boom"))
	b.AddItem("/t/a", types.Dotfile{Path: "a2"}, Success())

	assert.Equal(t, 1, b.Len())
	got, ok := b.DeployedItem("/t/a")
	require.True(t, ok)
	assert.Equal(t, "a2", got.Path)

	b.Remove("/t/a")
	assert.False(t, b.Contains("/t/a"))
}

func TestItemResolvesChainsOfAnyDepth(t *testing.T) {
	for depth := 0; depth <= 8; depth++ {
		t.Run(fmt.Sprintf("depth_%d", depth), func(t *testing.T) {
			b := NewBuilder()
			b.AddItem("/root", types.Dotfile{Path: "root"}, Success())
			parent := "/root"
			for i := 0; i < depth; i++ {
				child := fmt.Sprintf("%s/%d", parent, i)
				b.AddChild(child, parent, Success())
				parent = child
			}

			got, ok := b.Item(parent)
			require.True(t, ok)
			assert.Equal(t, "root", got.Path)

			_, ok = b.DeployedItem(parent)
			assert.True(t, ok)
		})
	}
}

func TestItemMissingLinkReturnsNotFound(t *testing.T) {
	b := NewBuilder()
	b.AddChild("/t/a/x", "/t/a", Success())
	b.AddChild("/t/a/x/y", "/t/a/x", Success())

	_, ok := b.Item("/t/a/x/y")
	assert.False(t, ok)
	_, ok = b.DeployedItem("/t/a/x/y")
	assert.False(t, ok)
	_, ok = b.Priority("/t/a/x/y")
	assert.False(t, ok)
	_, ok = b.Item("/nowhere")
	assert.False(t, ok)
}

func TestItemCorruptCycleTerminates(t *testing.T) {
	b := NewBuilder()
	b.AddChild("/a", "/b", Success())
	b.AddChild("/b", "/a", Success())

	_, ok := b.Item("/a")
	assert.False(t, ok)
	_, ok = b.DeployedItem("/b")
	assert.False(t, ok)
}

func TestDeployedItemRequiresWholeChainSuccess(t *testing.T) {
	tests := []struct {
		name       string
		parent     ItemStatus
		child      ItemStatus
		grandchild ItemStatus
		want       bool
	}{
		{"all_success", Success(), Success(), Success(), true},
		{"root_failed", Failed("mkdir"), Success(), Success(), false},
		{"middle_skipped", Success(), Skipped("keep"), Success(), false},
		{"leaf_failed", Success(), Success(), Failed("write"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			b.AddItem("/d", types.Dotfile{Path: "d"}, tt.parent)
			b.AddChild("/d/c", "/d", tt.child)
			b.AddChild("/d/c/g", "/d/c", tt.grandchild)

			_, ok := b.DeployedItem("/d/c/g")
			assert.Equal(t, tt.want, ok)

			_, ok = b.Item("/d/c/g")
			assert.True(t, ok, "Item ignores status")

			_, ok = b.Priority("/d/c/g")
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestIsDeployed(t *testing.T) {
	b := NewBuilder()
	b.AddItem("/ok", types.Dotfile{Path: "ok"}, Success())
	b.AddItem("/bad", types.Dotfile{Path: "bad"}, Failed("nope"))

	deployed, known := b.IsDeployed("/ok")
	assert.True(t, deployed)
	assert.True(t, known)

	deployed, known = b.IsDeployed("/bad")
	assert.False(t, deployed)
	assert.True(t, known)

	_, known = b.IsDeployed("/missing")
	assert.False(t, known)
}

func TestFinalize(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Second)

	t.Run("success", func(t *testing.T) {
		b := newBuilder(fixedClock(start, end))
		b.AddItem("/x", types.Dotfile{Path: "x"}, Success())
		d := b.Success()

		assert.True(t, d.Status().IsSuccess())
		assert.Equal(t, start, d.TimeStart())
		assert.Equal(t, end, d.TimeEnd())
		assert.Equal(t, 3*time.Second, d.Duration())
		assert.Equal(t, 1, d.Len())
	})

	t.Run("failed", func(t *testing.T) {
		b := newBuilder(fixedClock(start, end))
		d := b.Failed("deployment aborted by user")

		assert.True(t, d.Status().IsFailed())
		assert.Equal(t, "Failed: deployment aborted by user", d.Status().String())
		assert.True(t, d.HasFailures())
	})

	t.Run("record_is_detached_from_builder", func(t *testing.T) {
		b := NewBuilder()
		b.AddItem("/x", types.Dotfile{Path: "x"}, Success())
		d := b.Success()
		b.AddItem("/y", types.Dotfile{Path: "y"}, Success())

		assert.Equal(t, 1, d.Len())
		assert.GreaterOrEqual(t, d.Duration(), time.Duration(0))
	})
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "Success", Success().String())
	assert.Equal(t, "Failed: disk full", Failed("disk full").String())
	assert.Equal(t, "Failed: code 3", Failedf("code %d", 3).String())
	assert.Equal(t, "Skipped: target exists", Skipped("target exists").String())
	assert.True(t, Skipped("x").IsSkipped())
}
