package odfa

import "testing"

func TestSamplePermutationIsBijectionWithInverse(t *testing.T) {
	const n = 64
	perm, err := SamplePermutation(n)
	if err != nil {
		t.Fatalf("SamplePermutation: %v", err)
	}
	if !IsPermutation(perm, n) {
		t.Fatalf("SamplePermutation produced a non-bijection: %v", perm)
	}
	inv, err := InversePermutation(perm)
	if err != nil {
		t.Fatalf("InversePermutation: %v", err)
	}
	for i := 0; i < n; i++ {
		if inv[perm[i]] != i {
			t.Fatalf("inv[perm[%d]] = %d, want %d", i, inv[perm[i]], i)
		}
	}
}

func TestSamplePermutationUniformity(t *testing.T) {
	const n = 5
	const trials = 10000
	// Count how often value 0 lands at each index; under uniform sampling
	// each index should receive it with probability 1/n.
	counts := make([]int, n)
	for i := 0; i < trials; i++ {
		perm, err := SamplePermutation(n)
		if err != nil {
			t.Fatalf("SamplePermutation: %v", err)
		}
		for idx, v := range perm {
			if v == 0 {
				counts[idx]++
				break
			}
		}
	}

	expected := float64(trials) / float64(n)
	chiSq := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chiSq += d * d / expected
	}
	// df = n-1 = 4; chi-square critical value at alpha=0.001 is ~18.47.
	const criticalValue = 18.47
	if chiSq > criticalValue {
		t.Fatalf("chi-square statistic %.2f exceeds critical value %.2f; counts=%v", chiSq, criticalValue, counts)
	}
}

func TestInversePermutationRejectsNonBijection(t *testing.T) {
	if _, err := InversePermutation([]int{0, 0, 2}); err == nil {
		t.Fatal("expected error for duplicate value, got nil")
	}
	if _, err := InversePermutation([]int{0, 5, 2}); err == nil {
		t.Fatal("expected error for out-of-range value, got nil")
	}
}
