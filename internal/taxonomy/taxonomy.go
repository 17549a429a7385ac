// Package taxonomy holds the fixed wild-mushroom species taxonomy and the
// classification and advisory resolution rules.
package taxonomy

import "fmt"

// LabelUnrecognized is the sentinel label used when no detection was made.
const LabelUnrecognized = "未识别"

// Advisory texts shown to the user alongside a classification.
const (
	AdvisoryEdible        = "提示：该菌类可食用"
	AdvisoryNotIdentified = "提示：未识别出菌类"
	AdvisoryCaution       = "提示：请谨慎辨别，部分野生菌有毒！"
)

// classes is the fixed ordered species list. The order matches the class
// index emitted by the detection model and must not change.
var classes = []string{
	"奶浆菌", "干巴菌", "松茸", "松露", "牛肝菌", "珊瑚菌",
	"竹荪", "羊肚菌", "见手青", "青头菌", "鸡枞菌", "鸡油菌",
}

// edible marks species that are generally considered safe to eat.
var edible = map[string]bool{
	"松茸":  true,
	"鸡枞菌": true,
	"牛肝菌": true,
	"竹荪":  true,
	"羊肚菌": true,
	"鸡油菌": true,
}

// filterCodes maps the short history-filter codes to stored species labels.
var filterCodes = map[string]string{
	"songrong": "松茸",
	"jizong":   "鸡枞菌",
	"niugan":   "牛肝菌",
}

// Classes returns a copy of the ordered taxonomy.
func Classes() []string {
	out := make([]string, len(classes))
	copy(out, classes)
	return out
}

// Size returns the number of species in the taxonomy.
func Size() int {
	return len(classes)
}

// LabelForIndex maps a model class index to a species label. Indexes outside
// the taxonomy yield a descriptive unknown label instead of failing.
func LabelForIndex(index int) string {
	if index >= 0 && index < len(classes) {
		return classes[index]
	}
	return fmt.Sprintf("未知(%d)", index)
}

// LabelForFilterCode maps a short filter code to its stored species label.
// Unknown codes are passed through unchanged so exact-label filters work too.
func LabelForFilterCode(code string) string {
	if label, ok := filterCodes[code]; ok {
		return label
	}
	return code
}

// AdvisoryFor returns the advisory text for a resolved label. The mapping is
// total: every label maps to exactly one advisory.
func AdvisoryFor(label string) string {
	switch {
	case edible[label]:
		return AdvisoryEdible
	case label == LabelUnrecognized:
		return AdvisoryNotIdentified
	default:
		return AdvisoryCaution
	}
}
