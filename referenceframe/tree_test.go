package referenceframe

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/spottraj/spatialmath"
)

func newSpotTree(t *testing.T, opts ...TreeOption) (*Tree, Names) {
	t.Helper()
	names := NamesFor("opal")
	tree := NewTree(names.Odom, opts...)
	odomTBody := spatialmath.NewPose(r3.Vector{X: 2, Y: 1, Z: 0.5}, spatialmath.QuatFromYaw(math.Pi/2))
	test.That(t, tree.Add(names.Body, names.Odom, odomTBody), test.ShouldBeNil)
	test.That(t, tree.Add(names.FlatBody, names.Body, spatialmath.NewZeroPose()), test.ShouldBeNil)
	test.That(t, tree.Add(names.Vision, names.Odom, spatialmath.NewPoseFromPoint(r3.Vector{X: -1})), test.ShouldBeNil)
	return tree, names
}

func TestNamespace(t *testing.T) {
	test.That(t, Namespace("", BodyFrame), test.ShouldEqual, "body")
	test.That(t, Namespace("opal", BodyFrame), test.ShouldEqual, "opal/body")
	test.That(t, Namespace("opal/", OdomFrame), test.ShouldEqual, "opal/odom")
	test.That(t, NamesFor("").FlatBody, test.ShouldEqual, "flat_body")
}

func TestTransformBetween(t *testing.T) {
	tree, names := newSpotTree(t)
	ctx := context.Background()

	odomTBody, err := tree.TransformBetween(ctx, names.Odom, names.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PointAlmostEqual(odomTBody.Point(), r3.Vector{X: 2, Y: 1, Z: 0.5}, 1e-12), test.ShouldBeTrue)

	// vision sits one metre behind odom, so the body is three metres ahead of it in x
	visionTBody, err := tree.TransformBetween(ctx, names.Vision, names.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PointAlmostEqual(visionTBody.Point(), r3.Vector{X: 3, Y: 1, Z: 0.5}, 1e-12), test.ShouldBeTrue)

	bodyTVision, err := tree.TransformBetween(ctx, names.Body, names.Vision)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(spatialmath.Compose(visionTBody, bodyTVision), spatialmath.NewZeroPose()), test.ShouldBeTrue)

	self, err := tree.TransformBetween(ctx, names.Body, names.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(self, spatialmath.NewZeroPose()), test.ShouldBeTrue)
}

func TestTransformBetweenUnknownFrame(t *testing.T) {
	tree, names := newSpotTree(t)
	_, err := tree.TransformBetween(context.Background(), names.Odom, "opal/hand")
	test.That(t, errors.Is(err, ErrFrameUnavailable), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "opal/hand")
}

func TestAddValidation(t *testing.T) {
	tree, names := newSpotTree(t)
	test.That(t, tree.Add(names.Body, names.Odom, spatialmath.NewZeroPose()), test.ShouldNotBeNil)
	test.That(t, tree.Add("x", "nope", spatialmath.NewZeroPose()), test.ShouldNotBeNil)
	test.That(t, tree.Update("nope", spatialmath.NewZeroPose()), test.ShouldNotBeNil)
}

func TestRemoveDescendants(t *testing.T) {
	tree, names := newSpotTree(t)
	tree.Remove(names.Body)
	test.That(t, tree.FrameNames(), test.ShouldResemble, []string{names.Vision})
}

func TestStaleEstimate(t *testing.T) {
	mock := clock.NewMock()
	tree, names := newSpotTree(t, WithClock(mock), WithMaxAge(time.Second))
	ctx := context.Background()

	_, err := tree.TransformBetween(ctx, names.Odom, names.Body)
	test.That(t, err, test.ShouldBeNil)

	mock.Add(2 * time.Second)
	_, err = tree.TransformBetween(ctx, names.Odom, names.Body)
	test.That(t, errors.Is(err, ErrFrameUnavailable), test.ShouldBeTrue)

	test.That(t, tree.Update(names.Body, spatialmath.NewZeroPose()), test.ShouldBeNil)
	test.That(t, tree.Update(names.FlatBody, spatialmath.NewZeroPose()), test.ShouldBeNil)
	_, err = tree.TransformBetween(ctx, names.Odom, names.FlatBody)
	test.That(t, err, test.ShouldBeNil)
}

func TestWaitForTransform(t *testing.T) {
	tree := NewTree("odom", WithPollInterval(time.Millisecond))
	ctx := context.Background()

	err := tree.WaitForTransform(ctx, "odom", "body", 20*time.Millisecond)
	test.That(t, errors.Is(err, ErrFrameUnavailable), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "timed out")

	go func() {
		time.Sleep(5 * time.Millisecond)
		tree.Add("body", "odom", spatialmath.NewZeroPose())
	}()
	test.That(t, tree.WaitForTransform(ctx, "odom", "body", 5*time.Second), test.ShouldBeNil)
}

func TestWaitForTransformCancelled(t *testing.T) {
	tree := NewTree("odom")
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	err := tree.WaitForTransform(ctx, "odom", "body", time.Minute)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

func TestTreeString(t *testing.T) {
	tree, names := newSpotTree(t)
	out := tree.String()
	test.That(t, out, test.ShouldContainSubstring, names.FlatBody)
	test.That(t, out, test.ShouldContainSubstring, "Yaw:90.00")
}
