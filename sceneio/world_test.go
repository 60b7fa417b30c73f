package sceneio_test

import (
	"bytes"
	"testing"

	"github.com/gan74/yave/ecs"
	"github.com/gan74/yave/linear"
	"github.com/gan74/yave/sceneio"
)

type position struct {
	Pos linear.V3
}

type label struct {
	Name string
}

func TestSaveLoadWorldRoundTrip(t *testing.T) {
	w := ecs.NewWorld()
	defer w.Close()

	e1 := w.CreateEntity()
	if _, err := ecs.AddComponent(w, e1, position{Pos: linear.V3{1, 2, 3}}); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	if _, err := ecs.AddComponent(w, e1, label{Name: "hero"}); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	e2 := w.CreateEntity()
	if _, err := ecs.AddComponent(w, e2, position{Pos: linear.V3{4, 5, 6}}); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	w.Tag("enemy").Add(e2)

	codec := sceneio.NewCodec()
	sceneio.RegisterComponent[position](codec, "position")
	sceneio.RegisterComponent[label](codec, "label")

	var buf bytes.Buffer
	if err := sceneio.SaveWorld(w, codec, &buf); err != nil {
		t.Fatalf("SaveWorld: %v", err)
	}

	w2 := ecs.NewWorld()
	defer w2.Close()
	if err := sceneio.LoadWorld(w2, codec, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("LoadWorld: %v", err)
	}

	if !w2.EntityExists(e1) {
		t.Fatal("e1 missing after round trip")
	}
	if !w2.EntityExists(e2) {
		t.Fatal("e2 missing after round trip")
	}

	p1, ok := ecs.GetComponent[position](w2, e1)
	if !ok || p1.Pos != (linear.V3{1, 2, 3}) {
		t.Fatalf("e1 position = %+v, %v", p1, ok)
	}
	l1, ok := ecs.GetComponent[label](w2, e1)
	if !ok || l1.Name != "hero" {
		t.Fatalf("e1 label = %+v, %v", l1, ok)
	}
	p2, ok := ecs.GetComponent[position](w2, e2)
	if !ok || p2.Pos != (linear.V3{4, 5, 6}) {
		t.Fatalf("e2 position = %+v, %v", p2, ok)
	}
	if _, ok := ecs.GetComponent[label](w2, e2); ok {
		t.Fatal("e2 acquired a label it never had")
	}

	if !w2.Tag("enemy").Has(e2) {
		t.Error("e2 lost its tag across the round trip")
	}
	if w2.Tag("enemy").Has(e1) {
		t.Error("e1 gained a tag it never had")
	}
}

func TestLoadWorldSkipsUnknownContainer(t *testing.T) {
	w := ecs.NewWorld()
	defer w.Close()

	e := w.CreateEntity()
	if _, err := ecs.AddComponent(w, e, position{Pos: linear.V3{9, 9, 9}}); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	if _, err := ecs.AddComponent(w, e, label{Name: "ghost"}); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}

	writerCodec := sceneio.NewCodec()
	sceneio.RegisterComponent[position](writerCodec, "position")
	sceneio.RegisterComponent[label](writerCodec, "label")

	var buf bytes.Buffer
	if err := sceneio.SaveWorld(w, writerCodec, &buf); err != nil {
		t.Fatalf("SaveWorld: %v", err)
	}

	// a reader that has never heard of "label" must still load the
	// entity and its known component, ignoring the unknown container.
	readerCodec := sceneio.NewCodec()
	sceneio.RegisterComponent[position](readerCodec, "position")

	w2 := ecs.NewWorld()
	defer w2.Close()
	if err := sceneio.LoadWorld(w2, readerCodec, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("LoadWorld: %v", err)
	}
	if !w2.EntityExists(e) {
		t.Fatal("entity missing after load with a narrower codec")
	}
	if _, ok := ecs.GetComponent[position](w2, e); !ok {
		t.Fatal("known component lost alongside the unknown one")
	}
}

func TestLoadWorldRejectsBadMagic(t *testing.T) {
	w2 := ecs.NewWorld()
	defer w2.Close()
	err := sceneio.LoadWorld(w2, sceneio.NewCodec(), bytes.NewReader([]byte{1, 2, 3, 4, 1, 0, 0, 0, 1, 0, 0, 0}))
	if err == nil {
		t.Fatal("LoadWorld accepted a garbage stream")
	}
}
