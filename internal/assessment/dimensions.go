package assessment

// Dimension is a profile feature code understood by the classification model.
type Dimension string

const (
	Realistic     Dimension = "R"
	Investigative Dimension = "I"
	Artistic      Dimension = "A"
	Social        Dimension = "S"
	Enterprising  Dimension = "E"
	Conventional  Dimension = "C"

	LogicalMathematical Dimension = "LM"
	Linguistic          Dimension = "L"
	Spatial             Dimension = "ES"
	Musical             Dimension = "M"
	BodilyKinesthetic   Dimension = "CK"
	Interpersonal       Dimension = "IP"
	Intrapersonal       Dimension = "IA"
	Naturalistic        Dimension = "N"

	GeneralPerformance    Dimension = "Rendimiento_General"
	STEMPerformance       Dimension = "Rendimiento_STEM"
	HumanitiesPerformance Dimension = "Rendimiento_Humanidades"
)

const (
	// ItemCount is the number of questionnaire items.
	ItemCount = 65
	// DimensionCount is the number of features in a Profile.
	DimensionCount = 17

	minAnswer = 1
	maxAnswer = 5
)

// Group classifies how a dimension is derived from its items.
type Group int

const (
	GroupRIASEC Group = iota + 1
	GroupGardner
	GroupPerformance
)

type dimensionRow struct {
	code  Dimension
	group Group
	items []int
}

// dimensionTable is the item-to-dimension assignment, in profile order.
var dimensionTable = [DimensionCount]dimensionRow{
	{Realistic, GroupRIASEC, []int{1, 2, 3, 4, 5}},
	{Investigative, GroupRIASEC, []int{6, 7, 8, 9, 10}},
	{Artistic, GroupRIASEC, []int{11, 12, 13, 14, 15}},
	{Social, GroupRIASEC, []int{16, 17, 18, 19, 20}},
	{Enterprising, GroupRIASEC, []int{21, 22, 23, 24, 25}},
	{Conventional, GroupRIASEC, []int{26, 27, 28, 29, 30}},

	{LogicalMathematical, GroupGardner, []int{31, 32, 33, 34}},
	{Linguistic, GroupGardner, []int{35, 36, 37, 38}},
	{Spatial, GroupGardner, []int{39, 40, 41, 42}},
	{Musical, GroupGardner, []int{43, 44, 45, 46}},
	{BodilyKinesthetic, GroupGardner, []int{47, 48, 49, 50}},
	{Interpersonal, GroupGardner, []int{51, 52, 53, 54}},
	{Intrapersonal, GroupGardner, []int{55, 56, 57, 58}},
	{Naturalistic, GroupGardner, []int{59, 60, 61, 62}},

	{GeneralPerformance, GroupPerformance, []int{63}},
	{STEMPerformance, GroupPerformance, []int{64}},
	{HumanitiesPerformance, GroupPerformance, []int{65}},
}

type itemSlot struct {
	dimension Dimension
	position  int
}

// itemIndex is the reverse of dimensionTable, indexed by item number.
var itemIndex = func() [ItemCount + 1]itemSlot {
	var idx [ItemCount + 1]itemSlot
	for _, row := range dimensionTable {
		for pos, item := range row.items {
			idx[item] = itemSlot{dimension: row.code, position: pos}
		}
	}
	return idx
}()

// Dimensions returns the dimension codes in profile order.
func Dimensions() []Dimension {
	out := make([]Dimension, len(dimensionTable))
	for i, row := range dimensionTable {
		out[i] = row.code
	}
	return out
}

// ItemsFor returns the items that feed d, or nil for an unknown dimension.
func ItemsFor(d Dimension) []int {
	for _, row := range dimensionTable {
		if row.code == d {
			out := make([]int, len(row.items))
			copy(out, row.items)
			return out
		}
	}
	return nil
}

// DimensionOf reports the dimension an item belongs to and its position in that
// dimension's item group.
func DimensionOf(item int) (Dimension, int, bool) {
	if item < 1 || item > ItemCount {
		return "", 0, false
	}
	slot := itemIndex[item]
	return slot.dimension, slot.position, true
}

// GroupOf returns the group of d, or 0 for an unknown dimension.
func GroupOf(d Dimension) Group {
	for _, row := range dimensionTable {
		if row.code == d {
			return row.group
		}
	}
	return 0
}

// IsValid reports whether d is one of the profile codes.
func (d Dimension) IsValid() bool {
	return GroupOf(d) != 0
}
