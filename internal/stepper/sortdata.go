package stepper

// Payload structs shared by the two sort steppers. Every payload embeds the
// full working array so a single event is enough to render the state.

type arrayData struct {
	Array []float64 `json:"array"`
}

type compareData struct {
	I      int       `json:"i"`
	J      int       `json:"j"`
	ValueI float64   `json:"value_i"`
	ValueJ float64   `json:"value_j"`
	Array  []float64 `json:"array"`
}

type swapData struct {
	I     int       `json:"i"`
	J     int       `json:"j"`
	Array []float64 `json:"array"`
}

type rangeData struct {
	Left  int       `json:"left"`
	Right int       `json:"right"`
	Array []float64 `json:"array"`
}

type divideData struct {
	Left  int       `json:"left"`
	Right int       `json:"right"`
	Mid   *int      `json:"mid,omitempty"`
	Array []float64 `json:"array"`
}

type sortDoneData struct {
	SortedArray []float64 `json:"sorted_array"`
}
