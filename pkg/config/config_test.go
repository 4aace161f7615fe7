package config

import "testing"

const validYAML = `
seed: 42
profile:
  points:
    - [0, 0]
    - [1, 0]
    - [1, 1]
    - [0, 1]
extrude:
  vector: [0, 0, 10]
`

func TestLoadConfigFromBytesValid(t *testing.T) {
	cfg, err := LoadConfigFromBytes([]byte(validYAML))
	if err != nil {
		t.Fatalf("LoadConfigFromBytes: %v", err)
	}
	if cfg.Seed != 42 {
		t.Fatalf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Render.Width != 1200 {
		t.Fatalf("Render.Width = %d, want default 1200", cfg.Render.Width)
	}
	if cfg.Solve.MaxIterations != 50 {
		t.Fatalf("Solve.MaxIterations = %d, want default 50", cfg.Solve.MaxIterations)
	}
}

func TestLoadConfigRejectsZeroSeed(t *testing.T) {
	_, err := LoadConfigFromBytes([]byte(`
seed: 0
profile:
  points: [[0,0],[1,0],[1,1]]
extrude:
  vector: [0,0,1]
`))
	if err == nil {
		t.Fatalf("expected an error for a zero seed")
	}
}

func TestLoadConfigRejectsTooFewProfilePoints(t *testing.T) {
	_, err := LoadConfigFromBytes([]byte(`
seed: 1
profile:
  points: [[0,0],[1,0]]
extrude:
  vector: [0,0,1]
`))
	if err == nil {
		t.Fatalf("expected an error for a 2-point profile")
	}
}

func TestLoadConfigRejectsZeroExtrudeVector(t *testing.T) {
	_, err := LoadConfigFromBytes([]byte(`
seed: 1
profile:
  points: [[0,0],[1,0],[1,1]]
extrude:
  vector: [0,0,0]
`))
	if err == nil {
		t.Fatalf("expected an error for a zero extrude vector")
	}
}

func TestHashIsDeterministic(t *testing.T) {
	a, err := LoadConfigFromBytes([]byte(validYAML))
	if err != nil {
		t.Fatalf("LoadConfigFromBytes: %v", err)
	}
	b, err := LoadConfigFromBytes([]byte(validYAML))
	if err != nil {
		t.Fatalf("LoadConfigFromBytes: %v", err)
	}
	h1, h2 := a.Hash(), b.Hash()
	if len(h1) != len(h2) {
		t.Fatalf("hash lengths differ")
	}
	for i := range h1 {
		if h1[i] != h2[i] {
			t.Fatalf("hash not deterministic across identical configs")
		}
	}
}
