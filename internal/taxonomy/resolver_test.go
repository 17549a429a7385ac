package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEmptyDetections(t *testing.T) {
	res := Resolve(nil)

	assert.Equal(t, LabelUnrecognized, res.Label)
	assert.InDelta(t, 0.0, res.Confidence, 1e-9)
	assert.Equal(t, AdvisoryNotIdentified, res.Advisory)
}

func TestResolveFirstDetectionWins(t *testing.T) {
	res := Resolve([]Detection{
		{ClassIndex: 2, Confidence: 0.81},
		{ClassIndex: 4, Confidence: 0.95}, // later entries never override the first
	})

	assert.Equal(t, "松茸", res.Label)
	assert.InDelta(t, 0.81, res.Confidence, 1e-9)
	assert.Equal(t, AdvisoryEdible, res.Advisory)
}

func TestResolveOutOfRangeIndex(t *testing.T) {
	res := Resolve([]Detection{{ClassIndex: 99, Confidence: 0.4}})

	assert.Equal(t, "未知(99)", res.Label)
	assert.InDelta(t, 0.4, res.Confidence, 1e-9)
	assert.Equal(t, AdvisoryCaution, res.Advisory)

	res = Resolve([]Detection{{ClassIndex: -1, Confidence: 0.4}})
	assert.Equal(t, "未知(-1)", res.Label)
}

func TestResolveCautionForToxicSpecies(t *testing.T) {
	// 见手青 is in the taxonomy but not in the edible set
	res := Resolve([]Detection{{ClassIndex: 8, Confidence: 0.7}})

	assert.Equal(t, "见手青", res.Label)
	assert.Equal(t, AdvisoryCaution, res.Advisory)
}

// Every possible resolution carries a non-empty advisory, including indexes
// far outside the taxonomy.
func TestAdvisoryTotality(t *testing.T) {
	for index := -3; index < Size()+3; index++ {
		res := Resolve([]Detection{{ClassIndex: index, Confidence: 0.5}})
		assert.NotEmpty(t, res.Advisory, "index %d", index)
	}
	assert.NotEmpty(t, Resolve(nil).Advisory)
}

func TestResolveIsDeterministic(t *testing.T) {
	in := []Detection{{ClassIndex: 10, Confidence: 0.66}}
	assert.Equal(t, Resolve(in), Resolve(in))
}

func TestLabelForFilterCode(t *testing.T) {
	assert.Equal(t, "松茸", LabelForFilterCode("songrong"))
	assert.Equal(t, "鸡枞菌", LabelForFilterCode("jizong"))
	assert.Equal(t, "牛肝菌", LabelForFilterCode("niugan"))
	// raw labels pass through untouched
	assert.Equal(t, "干巴菌", LabelForFilterCode("干巴菌"))
}

func TestClassesReturnsCopy(t *testing.T) {
	a := Classes()
	a[0] = "mutated"
	assert.Equal(t, "奶浆菌", Classes()[0])
	assert.Len(t, Classes(), 12)
}
