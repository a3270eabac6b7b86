package risk

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"schedrisk/domain/core"
	"schedrisk/domain/schedule"
	apperrors "schedrisk/internal/errors"
)

// eigenFloor is the smallest eigenvalue allowed after repair. Raising
// eigenvalues to this floor keeps the repaired matrix factorizable while
// perturbing the requested correlations as little as possible.
const eigenFloor = 1e-8

// CorrelationEntry is an unordered activity pair with a correlation
// coefficient in [-1, 1].
type CorrelationEntry struct {
	ActivityA   core.ActivityID `json:"activity_a"`
	ActivityB   core.ActivityID `json:"activity_b"`
	Coefficient float64         `json:"coefficient"`
}

// NewCorrelationEntry builds a range-checked correlation entry.
// Coefficients outside [-1, 1] fail immediately.
func NewCorrelationEntry(a, b core.ActivityID, coefficient float64) (CorrelationEntry, error) {
	if coefficient < -1 || coefficient > 1 {
		return CorrelationEntry{}, apperrors.ValidationErrorf("correlation coefficient %g outside [-1, 1]", coefficient)
	}
	return CorrelationEntry{ActivityA: a, ActivityB: b, Coefficient: coefficient}, nil
}

// CorrelationMatrix is a symmetric, unit-diagonal matrix expressing pairwise
// correlation between the uncertain durations of a fixed, ordered set of
// activities. Positive-semi-definiteness is a derived invariant: checked via
// IsPositiveDefinite and restorable via MakePositiveDefinite, not assumed.
type CorrelationMatrix struct {
	order []core.ActivityID
	index map[core.ActivityID]int
	sym   *mat.SymDense
}

// Identity returns the no-correlation matrix over the given activity ordering.
func Identity(order []core.ActivityID) *CorrelationMatrix {
	m := newMatrix(order)
	for i := range order {
		m.sym.SetSym(i, i, 1)
	}
	return m
}

// FromEntries applies each entry at its symmetric matrix positions.
// Unspecified off-diagonal pairs default to defaultCorrelation. Entries
// referencing an identifier outside the ordering are ignored, not errors.
func FromEntries(order []core.ActivityID, entries []CorrelationEntry, defaultCorrelation float64) *CorrelationMatrix {
	m := newMatrix(order)
	n := len(order)
	for i := 0; i < n; i++ {
		m.sym.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			m.sym.SetSym(i, j, defaultCorrelation)
		}
	}
	for _, e := range entries {
		i, okA := m.index[e.ActivityA]
		j, okB := m.index[e.ActivityB]
		if !okA || !okB || i == j {
			continue
		}
		m.sym.SetSym(i, j, e.Coefficient)
	}
	return m
}

// FromWBS derives correlation from work-breakdown proximity: activities
// sharing an immediate parent get sameParent, activities whose parents are
// siblings (same grandparent) get sibling, everything else (including
// activities without WBS membership) gets 0.
func FromWBS(activities []schedule.Activity, sameParent, sibling float64) *CorrelationMatrix {
	order := activityOrder(activities)
	m := newMatrix(order)
	n := len(order)

	parents := make([]string, n)
	grandparents := make([]string, n)
	hasWBS := make([]bool, n)
	for i, a := range activities {
		p, ok := a.WBSParent()
		if !ok {
			continue
		}
		hasWBS[i] = true
		parents[i] = p
		gp, _ := schedule.WBSParent(p)
		grandparents[i] = gp
	}

	for i := 0; i < n; i++ {
		m.sym.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			if !hasWBS[i] || !hasWBS[j] {
				continue
			}
			switch {
			case parents[i] == parents[j]:
				m.sym.SetSym(i, j, sameParent)
			case grandparents[i] == grandparents[j] && parents[i] != parents[j]:
				m.sym.SetSym(i, j, sibling)
			}
		}
	}
	return m
}

// FromResources derives correlation from resource sharing: the coefficient
// between two activities is sharedResource scaled by the Jaccard overlap of
// their resource sets. Pairs with no shared resources get 0.
func FromResources(activities []schedule.Activity, sharedResource float64) *CorrelationMatrix {
	order := activityOrder(activities)
	m := newMatrix(order)
	n := len(order)

	sets := make([]map[core.ResourceID]bool, n)
	for i, a := range activities {
		set := make(map[core.ResourceID]bool, len(a.Resources))
		for _, r := range a.Resources {
			set[r] = true
		}
		sets[i] = set
	}

	for i := 0; i < n; i++ {
		m.sym.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			overlap := jaccard(sets[i], sets[j])
			if overlap > 0 {
				m.sym.SetSym(i, j, sharedResource*overlap)
			}
		}
	}
	return m
}

// NewCorrelationMatrix builds a matrix from a row-major data slice. The data
// must be square and match the declared ordering; symmetry is enforced by
// mirroring the upper triangle.
func NewCorrelationMatrix(order []core.ActivityID, data []float64) (*CorrelationMatrix, error) {
	n := len(order)
	if len(data) != n*n {
		return nil, apperrors.ShapeMismatch("correlation data does not match declared activity count")
	}
	m := newMatrix(order)
	for i := 0; i < n; i++ {
		m.sym.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			m.sym.SetSym(i, j, data[i*n+j])
		}
	}
	return m, nil
}

// Size returns the number of activities the matrix covers.
func (m *CorrelationMatrix) Size() int {
	return len(m.order)
}

// Order returns the fixed activity ordering indexing the matrix.
func (m *CorrelationMatrix) Order() []core.ActivityID {
	out := make([]core.ActivityID, len(m.order))
	copy(out, m.order)
	return out
}

// At returns the correlation between the i-th and j-th activities.
func (m *CorrelationMatrix) At(i, j int) float64 {
	return m.sym.At(i, j)
}

// IndexOf returns the matrix index of an activity, or -1 when absent.
func (m *CorrelationMatrix) IndexOf(id core.ActivityID) int {
	if i, ok := m.index[id]; ok {
		return i
	}
	return -1
}

// IsPositiveDefinite reports whether the matrix is numerically valid for
// correlated sampling, i.e. admits a Cholesky factorization.
func (m *CorrelationMatrix) IsPositiveDefinite() bool {
	if m.Size() == 0 {
		return true
	}
	var chol mat.Cholesky
	return chol.Factorize(m.sym)
}

// MakePositiveDefinite returns a corrected copy of the matrix: eigenvalues
// below a small positive floor are raised to it and the result is
// renormalized to restore the unit diagonal. Shape and activity ordering are
// unchanged. The receiver is returned as-is when already factorizable.
func (m *CorrelationMatrix) MakePositiveDefinite() *CorrelationMatrix {
	if m.IsPositiveDefinite() {
		return m
	}

	n := m.Size()
	var eig mat.EigenSym
	if !eig.Factorize(m.sym, true) {
		// Eigendecomposition of a symmetric matrix should not fail; fall
		// back to the identity so sampling still has a valid factor.
		return Identity(m.order)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	for i := range values {
		if values[i] < eigenFloor {
			values[i] = eigenFloor
		}
	}

	// Reconstruct V * diag(values) * V^T.
	scaled := mat.NewDense(n, n, nil)
	scaled.Mul(&vectors, diagOf(values))
	rebuilt := mat.NewDense(n, n, nil)
	rebuilt.Mul(scaled, vectors.T())

	// Renormalize so the diagonal is exactly 1 again.
	out := newMatrix(m.order)
	for i := 0; i < n; i++ {
		out.sym.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			denom := rebuilt.At(i, i) * rebuilt.At(j, j)
			if denom <= 0 {
				continue
			}
			out.sym.SetSym(i, j, rebuilt.At(i, j)/math.Sqrt(denom))
		}
	}
	return out
}

// CholeskyLower factorizes the matrix (repairing it first when necessary)
// and returns the lower-triangular factor L with L*L^T equal to the matrix.
func (m *CorrelationMatrix) CholeskyLower() (*mat.TriDense, error) {
	repaired := m.MakePositiveDefinite()
	var chol mat.Cholesky
	if !chol.Factorize(repaired.sym) {
		return nil, apperrors.InternalError("correlation matrix not factorizable after repair")
	}
	var lower mat.TriDense
	chol.LTo(&lower)
	return &lower, nil
}

func newMatrix(order []core.ActivityID) *CorrelationMatrix {
	ids := make([]core.ActivityID, len(order))
	copy(ids, order)
	index := make(map[core.ActivityID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return &CorrelationMatrix{
		order: ids,
		index: index,
		sym:   mat.NewSymDense(max(len(ids), 1), nil),
	}
}

func activityOrder(activities []schedule.Activity) []core.ActivityID {
	order := make([]core.ActivityID, len(activities))
	for i, a := range activities {
		order[i] = a.ID
	}
	return order
}

func jaccard(a, b map[core.ResourceID]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for r := range a {
		if b[r] {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}

func diagOf(values []float64) *mat.DiagDense {
	return mat.NewDiagDense(len(values), values)
}
