package bisim

import "testing"

func TestEngineDisablesAfterFailureThreshold(t *testing.T) {
	e := &Engine{Threshold: 3}
	for i := 0; i < 2; i++ {
		e.recordFailure()
		if e.Disabled() {
			t.Fatalf("engine disabled too early, after %d failures", i+1)
		}
	}
	e.recordFailure()
	if !e.Disabled() {
		t.Fatalf("engine should disable once failures reach the threshold")
	}
}

func TestValidPartitionRejectsIncompleteCoverage(t *testing.T) {
	g := &Graph{Nodes: []uint64{1, 2, 3}}
	p := Partition{1: 0, 2: 0}
	if validPartition(g, p) {
		t.Fatalf("partition missing node 3 must be rejected")
	}
}
