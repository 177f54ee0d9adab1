package genotype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	if Diploid(AlleleUnknown, AlleleUnknown) != Unknown {
		t.Error("unknown alleles do not make the Unknown call")
	}
	if Diploid(AlleleGap, AlleleGap) != Gap {
		t.Error("gap alleles do not make the Gap call")
	}
	ag := Diploid(AlleleA, AlleleG)
	if !IsHeterozygous(ag) {
		t.Error("AG should be heterozygous")
	}
	if IsHeterozygous(Diploid(AlleleC, AlleleC)) {
		t.Error("CC should be homozygous")
	}
	if IUPAC(ag) != 'R' || IUPAC(Diploid(AlleleG, AlleleA)) != 'R' {
		t.Error("AG and GA should print as R")
	}
	if FromIUPAC('R') != ag {
		t.Error("R should parse as AG")
	}
	if Combine(Diploid(AlleleA, AlleleA), Diploid(AlleleC, AlleleC)) != Diploid(AlleleA, AlleleC) {
		t.Error("Combine should take the first allele of the first call and the second of the second")
	}
}

func TestParse(t *testing.T) {
	for s, want := range map[string]byte{
		"A":   Diploid(AlleleA, AlleleA),
		"N":   Unknown,
		"-":   Gap,
		"CT":  Diploid(AlleleC, AlleleT),
		"G/T": Diploid(AlleleG, AlleleT),
		"NN":  Unknown,
	} {
		got, err := Parse(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	_, err := Parse("AX")
	assert.Error(t, err)
	assert.Equal(t, "AC", String(Diploid(AlleleA, AlleleC)))
}

func testMatrix() *Matrix {
	sites := []Site{{Name: "s0", Chromosome: "1", Position: 100}, {Name: "s1", Chromosome: "1", Position: 200}, {Name: "s2", Chromosome: "1", Position: 300}}
	a, c, g := Diploid(AlleleA, AlleleA), Diploid(AlleleC, AlleleC), Diploid(AlleleG, AlleleG)
	return NewMatrixFromRows([]string{"t0", "t1", "t2"}, sites, [][]byte{
		{a, c, Unknown},
		{a, a, Unknown},
		{c, Diploid(AlleleA, AlleleC), g},
	})
}

func TestAlleles(t *testing.T) {
	m := testMatrix()
	alleles := m.Alleles()
	assert.Equal(t, Alleles{Major: AlleleA, Minor: AlleleC}, alleles[0])
	// three A against three C: ties break toward the lower code
	assert.Equal(t, Alleles{Major: AlleleA, Minor: AlleleC}, alleles[1])
	assert.Equal(t, Alleles{Major: AlleleG, Minor: AlleleUnknown}, alleles[2])
	assert.True(t, alleles[2].Monomorphic())
}

func TestMatrixCounts(t *testing.T) {
	m := testMatrix()
	assert.Equal(t, 1, m.CountUnknown(0))
	assert.Equal(t, 1, m.CountUnknown(1))
	assert.Equal(t, 0, m.CountUnknown(2))
	c := m.Clone()
	c.Set(0, 2, Gap)
	assert.Equal(t, Unknown, m.Get(0, 2), "clone must not share rows")
	assert.True(t, m.SameSites(c))
	assert.Equal(t, 2, m.TaxonIndex("t2"))
	assert.Equal(t, -1, m.TaxonIndex("nope"))
}

func TestBitView(t *testing.T) {
	m := testMatrix()
	views := m.BitViews(m.Alleles())
	v := views[2]
	assert.False(t, v.Major.Test(0))
	assert.True(t, v.Minor.Test(0))
	assert.True(t, v.Major.Test(1), "heterozygous call sets the major bit")
	assert.True(t, v.Minor.Test(1), "heterozygous call sets the minor bit")
	assert.True(t, v.Major.Test(2))
	assert.False(t, views[0].Major.Test(2), "unknown call sets no bits")
	assert.Equal(t, 3, v.Major.Or(v.Minor).Count())
}

func TestBits(t *testing.T) {
	b := NewBits(130)
	if b.BlockCount() != 3 {
		t.Errorf("expected 3 blocks, got %v", b.BlockCount())
	}
	b.Set(0)
	b.Set(64)
	b.Set(65)
	b.Set(129)
	if b.Block(1) != 3 {
		t.Errorf("unexpected block 1: %b", b.Block(1))
	}
	if b.BlockCardinality(2) != 1 {
		t.Error("expected one bit in block 2")
	}
	if b.Block(7) != 0 {
		t.Error("blocks past the end should be empty")
	}
	n := b.Not()
	if n.Count() != 126 {
		t.Errorf("complement should have 126 bits, got %v", n.Count())
	}
	if b.And(n).Count() != 0 {
		t.Error("b and its complement should not intersect")
	}
	first, last := BlockSpan(1, 5, 130)
	if first != 64 || last != 129 {
		t.Errorf("unexpected span %v-%v", first, last)
	}
}

func TestChromosomes(t *testing.T) {
	sites := []Site{
		{Name: "a", Chromosome: "1", Position: 10},
		{Name: "b", Chromosome: "1", Position: 20},
		{Name: "c", Chromosome: "2", Position: 5},
		{Name: "d", Chromosome: "3", Position: 7},
		{Name: "e", Chromosome: "3", Position: 9},
	}
	m := NewMatrix([]string{"t0", "t1"}, sites)
	ranges := m.Chromosomes()
	assert.Equal(t, []SiteRange{{0, 1}, {2, 2}, {3, 4}}, ranges)

	slice := m.Slice(ranges[2])
	assert.Equal(t, 2, slice.NumSites())
	assert.Equal(t, int32(7), slice.Position(0))
	slice.Set(1, 1, Gap)
	assert.Equal(t, Gap, m.Get(1, 4), "slices share calls with the matrix")
	assert.Equal(t, 1, slice.CountUnknown(1))
	assert.Empty(t, NewMatrix(nil, nil).Chromosomes())
}
