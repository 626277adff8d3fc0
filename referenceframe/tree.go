package referenceframe

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/spottraj/spatialmath"
)

const defaultPollInterval = 10 * time.Millisecond

type treeNode struct {
	parent string
	pose   spatialmath.Pose
	stamp  time.Time
}

// Tree is an in-memory tree of frames, each stored as parent_T_frame with the time it was last
// updated. It is safe for concurrent use: a robot may publish new estimates while a planner
// reads.
type Tree struct {
	mu     sync.RWMutex
	root   string
	frames map[string]treeNode

	clock        clock.Clock
	maxAge       time.Duration
	pollInterval time.Duration
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithClock sets the clock used to stamp and age estimates.
func WithClock(c clock.Clock) TreeOption {
	return func(t *Tree) {
		t.clock = c
	}
}

// WithMaxAge makes estimates older than maxAge unavailable. Zero means estimates never expire.
func WithMaxAge(maxAge time.Duration) TreeOption {
	return func(t *Tree) {
		t.maxAge = maxAge
	}
}

// WithPollInterval sets how often WaitForTransform re-checks the tree.
func WithPollInterval(interval time.Duration) TreeOption {
	return func(t *Tree) {
		t.pollInterval = interval
	}
}

// NewTree returns a tree containing only the root frame.
func NewTree(root string, opts ...TreeOption) *Tree {
	t := &Tree{
		root:         root,
		frames:       map[string]treeNode{},
		clock:        clock.New(),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Root returns the name of the root frame.
func (t *Tree) Root() string {
	return t.root
}

// Add inserts a new frame under parent.
func (t *Tree) Add(name, parent string, parentTFrame spatialmath.Pose) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.exists(name) {
		return NewFrameExistsError(name)
	}
	if !t.exists(parent) {
		return NewParentFrameMissingError(name, parent)
	}
	t.frames[name] = treeNode{parent: parent, pose: parentTFrame, stamp: t.clock.Now()}
	return nil
}

// Update replaces the estimate of an existing frame relative to its parent and refreshes its stamp.
func (t *Tree) Update(name string, parentTFrame spatialmath.Pose) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	node, ok := t.frames[name]
	if !ok {
		return errors.Errorf("frame %q is not in the frame tree", name)
	}
	node.pose = parentTFrame
	node.stamp = t.clock.Now()
	t.frames[name] = node
	return nil
}

// Remove deletes a frame and all of its descendants.
func (t *Tree) Remove(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remove(name)
}

func (t *Tree) remove(name string) {
	delete(t.frames, name)
	for child, node := range t.frames {
		if node.parent == name {
			t.remove(child)
		}
	}
}

// FrameNames returns the names of all frames other than the root, sorted.
func (t *Tree) FrameNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.frames))
	for name := range t.frames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Tree) exists(name string) bool {
	if name == t.root {
		return true
	}
	_, ok := t.frames[name]
	return ok
}

// rootTFrame walks from name to the root, composing parent transforms. Must hold t.mu.
func (t *Tree) rootTFrame(name string) (spatialmath.Pose, error) {
	chain := []spatialmath.Pose{}
	now := t.clock.Now()
	for current := name; current != t.root; {
		node, ok := t.frames[current]
		if !ok {
			return nil, errors.Errorf("frame %q is not in the frame tree", current)
		}
		if t.maxAge > 0 && now.Sub(node.stamp) > t.maxAge {
			return nil, errors.Errorf("estimate for frame %q is %s old", current, now.Sub(node.stamp))
		}
		chain = append(chain, node.pose)
		current = node.parent
	}
	return spatialmath.ComposeAll(lo.Reverse(chain)...), nil
}

// TransformBetween returns parent_T_child.
func (t *Tree) TransformBetween(ctx context.Context, parent, child string) (spatialmath.Pose, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	rootTParent, err := t.rootTFrame(parent)
	if err != nil {
		return nil, NewFrameUnavailableError(parent, child, err.Error())
	}
	rootTChild, err := t.rootTFrame(child)
	if err != nil {
		return nil, NewFrameUnavailableError(parent, child, err.Error())
	}
	return spatialmath.PoseBetween(rootTParent, rootTChild), nil
}

// WaitForTransform polls the tree until parent_T_child can be resolved.
func (t *Tree) WaitForTransform(ctx context.Context, parent, child string, timeout time.Duration) error {
	if _, err := t.TransformBetween(ctx, parent, child); err == nil || ctx.Err() != nil {
		return err
	}

	deadline := t.clock.Timer(timeout)
	defer deadline.Stop()
	ticker := t.clock.Ticker(t.pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			reason := fmt.Sprintf("timed out after %s", timeout)
			if lastErr != nil {
				reason = fmt.Sprintf("%s (last error: %v)", reason, lastErr)
			}
			return NewFrameUnavailableError(parent, child, reason)
		case <-ticker.C:
			_, lastErr = t.TransformBetween(ctx, parent, child)
			if lastErr == nil {
				return nil
			}
		}
	}
}

// String prints out a table of each frame in the tree with its parent and parent_T_frame pose.
func (t *Tree) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.frames))
	for name := range t.frames {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"#", "Name", "Parent", "Pose"})
	tw.AppendRow(table.Row{"0", t.root, "", ""})
	for i, name := range names {
		node := t.frames[name]
		tw.AppendRow(table.Row{fmt.Sprintf("%d", i+1), name, node.parent, spatialmath.PoseString(node.pose)})
	}
	return tw.Render()
}
