package explain

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRasterizer struct {
	html          string
	width, height int
	err           error
}

func (f *fakeRasterizer) RenderPNG(_ context.Context, html string, width, height int) ([]byte, error) {
	f.html, f.width, f.height = html, width, height
	if f.err != nil {
		return nil, f.err
	}
	return []byte("\x89PNG"), nil
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func embeddings(n int) ([][]float32, [][]float32, []string) {
	resume := [][]float32{{1, 0, 0}, {0, 1, 0}}
	job := make([][]float32, n)
	names := make([]string, n)
	for i := range job {
		// alternate between covered and uncovered directions
		job[i] = []float32{float32(i % 2), float32((i + 1) % 3), float32(i % 5)}
		names[i] = fmt.Sprintf("kw%d", i)
	}
	return resume, job, names
}

func TestExactShapleyEfficiency(t *testing.T) {
	resume, job, _ := embeddings(6)
	v := coverageValue(resume, job)
	phi := exactShapley(6, v)

	all := []bool{true, true, true, true, true, true}
	assert.InDelta(t, v(all)-v(make([]bool, 6)), sum(phi), 1e-9)
}

func TestExactShapleyTwoPlayers(t *testing.T) {
	// best similarities are 1 and 0: v({a})=100, v({b})=0, v({a,b})=50
	resume := [][]float32{{1, 0}}
	job := [][]float32{{1, 0}, {0, 1}}
	phi := exactShapley(2, coverageValue(resume, job))

	assert.InDelta(t, 75, phi[0], 1e-9)
	assert.InDelta(t, -25, phi[1], 1e-9)
}

func TestSampledShapleyEfficiencyAndAgreement(t *testing.T) {
	resume, job, _ := embeddings(8)
	v := coverageValue(resume, job)
	exact := exactShapley(8, v)
	sampled := sampledShapley(8, v, 4000, rand.New(rand.NewSource(7)))

	assert.InDelta(t, sum(exact), sum(sampled), 1e-6)
	for i := range exact {
		assert.InDelta(t, exact[i], sampled[i], 3, "feature %d", i)
	}
}

func TestAttributeDegenerate(t *testing.T) {
	e := New(nil, Options{}, nil)
	resume, job, names := embeddings(3)

	assert.Nil(t, e.Attribute(resume, names[:1], job[:1]))
	assert.Nil(t, e.Attribute(nil, names, job))
	assert.Nil(t, e.Attribute(resume, names, job[:2]))
}

func TestAttributeUsesSamplingWithSeed(t *testing.T) {
	resume, job, names := embeddings(ExactLimit + 2)
	e := New(nil, Options{Samples: 64, Seed: 42}, nil)

	a := e.Attribute(resume, names, job)
	b := e.Attribute(resume, names, job)
	require.NotNil(t, a)
	assert.Equal(t, a.Contributions, b.Contributions)

	values := make([]float64, len(a.Contributions))
	for i, c := range a.Contributions {
		values[i] = c.Value
	}
	assert.Zero(t, a.Base)
	assert.InDelta(t, a.Final-a.Base, sum(values), 1e-6)
}

func TestRowsFoldOtherFeatures(t *testing.T) {
	att := &Attribution{}
	for i := 0; i < 20; i++ {
		att.Contributions = append(att.Contributions, Contribution{Feature: fmt.Sprintf("kw%d", i), Value: float64(i)})
	}
	rows := att.rows()

	require.Len(t, rows, MaxDisplay)
	assert.Equal(t, "kw19", rows[0].Feature)
	assert.Equal(t, "6 other features", rows[MaxDisplay-1].Feature)
	assert.InDelta(t, 0+1+2+3+4+5, rows[MaxDisplay-1].Value, 1e-9)
}

func TestSVGEscapesLabels(t *testing.T) {
	att := &Attribution{Base: 0, Final: 40, Contributions: []Contribution{
		{Feature: "c++ <templates>", Value: 30},
		{Feature: "r&d", Value: 10},
	}}
	svg := att.SVG()

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, chartTitle)
	assert.Contains(t, svg, "c++ &lt;templates&gt;")
	assert.Contains(t, svg, "r&amp;d")
	assert.NotContains(t, svg, "NaN")
}

func TestExplainRendersBase64PNG(t *testing.T) {
	r := &fakeRasterizer{}
	e := New(r, Options{}, nil)
	resume, job, names := embeddings(4)

	out, err := e.Explain(context.Background(), resume, names, job)
	require.NoError(t, err)

	png, err := base64.StdEncoding.DecodeString(out)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png)
	assert.Equal(t, chartWidth, r.width)
	assert.Greater(t, r.height, 0)
	assert.Contains(t, r.html, "<svg")
}

func TestExplainSkipsAndFails(t *testing.T) {
	r := &fakeRasterizer{}
	e := New(r, Options{}, nil)
	resume, job, names := embeddings(4)

	out, err := e.Explain(context.Background(), resume, names[:1], job[:1])
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, r.html, "nothing should be rendered")

	r.err = errors.New("chrome gone")
	_, err = e.Explain(context.Background(), resume, names, job)
	require.ErrorContains(t, err, "chrome gone")
}

func TestCoverageValueEmptyCoalition(t *testing.T) {
	v := coverageValue([][]float32{{1}}, [][]float32{{1}, {1}})
	assert.Zero(t, v([]bool{false, false}))
	assert.False(t, math.IsNaN(v([]bool{true, false})))
}
