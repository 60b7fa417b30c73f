package sceneio_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gan74/yave/linear"
	"github.com/gan74/yave/sceneio"
)

func TestSaveLoadAnimationRoundTrip(t *testing.T) {
	a := &sceneio.Animation{
		Duration: 2.5,
		Channels: []sceneio.Channel{
			{
				Name: "root",
				Keys: []sceneio.Key{
					{Time: 0, Position: linear.V3{0, 0, 0}, Scale: linear.V3{1, 1, 1}, Rotation: linear.Q{R: 1}},
					{Time: 1, Position: linear.V3{1, 0, 0}, Scale: linear.V3{1, 1, 1}, Rotation: linear.Q{R: 1}},
				},
			},
			{
				Name: "arm",
				Keys: []sceneio.Key{
					{Time: 0.5, Position: linear.V3{0, 1, 0}, Scale: linear.V3{1, 1, 1}, Rotation: linear.Q{R: 1}},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := sceneio.SaveAnimation(a, &buf); err != nil {
		t.Fatalf("SaveAnimation: %v", err)
	}

	got, err := sceneio.LoadAnimation(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("LoadAnimation: %v", err)
	}
	if got.Duration != 2.5 {
		t.Fatalf("Duration = %v, want 2.5", got.Duration)
	}
	if len(got.Channels) != 2 {
		t.Fatalf("len(Channels) = %d, want 2", len(got.Channels))
	}
	// "arm" sorts before "root": SaveAnimation must reorder regardless
	// of the caller's slice order.
	if got.Channels[0].Name != "arm" || got.Channels[1].Name != "root" {
		t.Fatalf("channel order = [%s %s], want [arm root]", got.Channels[0].Name, got.Channels[1].Name)
	}
	if len(got.Channels[1].Keys) != 2 || got.Channels[1].Keys[1].Position != (linear.V3{1, 0, 0}) {
		t.Fatalf("root channel keys = %+v", got.Channels[1].Keys)
	}
}

func TestSaveAnimationRejectsNonAscendingKeys(t *testing.T) {
	a := &sceneio.Animation{
		Channels: []sceneio.Channel{
			{
				Name: "root",
				Keys: []sceneio.Key{
					{Time: 1},
					{Time: 0.5}, // out of order
				},
			},
		},
	}

	var buf bytes.Buffer
	err := sceneio.SaveAnimation(a, &buf)
	if !errors.Is(err, sceneio.ErrKeysNotAscending) {
		t.Fatalf("SaveAnimation error = %v, want ErrKeysNotAscending", err)
	}
}
