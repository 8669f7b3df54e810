package testutil

// IdentityShuffler keeps the sample in stratified order.
type IdentityShuffler struct{}

// Perm returns 0..n-1.
func (IdentityShuffler) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// ReverseShuffler reverses the sample. Unlike IdentityShuffler it proves
// that the permutation is actually applied.
type ReverseShuffler struct{}

// Perm returns n-1..0.
func (ReverseShuffler) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = n - 1 - i
	}
	return p
}
