package model

// Classification is the oracle's judgment about one batch of column values.
// Indices are positions in the batch that was shown to the oracle.
type Classification struct {
	// DataType is the type the oracle believes the values have.
	DataType DataType `json:"data_type"`

	// EmptyIndices are positions the oracle considers empty.
	EmptyIndices []int `json:"empty_indices"`

	// InvalidIndices are positions that do not fit the data type.
	InvalidIndices []int `json:"invalid_indices"`
}

// FallbackClassification is used whenever the oracle gives no usable answer.
func FallbackClassification() Classification {
	return Classification{
		DataType:       TypeString,
		EmptyIndices:   []int{},
		InvalidIndices: []int{},
	}
}
