package photo

// Distribution counts photos per shape bucket. Buckets are finer than
// Orientation and are only used as planning hints.
type Distribution struct {
	FullLengthPortraits int `json:"fullLengthPortraits"`
	RegularPortraits    int `json:"regularPortraits"`
	Squares             int `json:"squares"`
	Landscapes          int `json:"landscapes"`
	WidePanoramics      int `json:"widePanoramics"`
}

// Distribute buckets photos by aspect ratio.
func Distribute(photos []Photo) Distribution {
	var d Distribution
	for _, p := range photos {
		ar := p.AspectRatio
		switch {
		case ar < 0.65:
			d.FullLengthPortraits++
		case ar < 0.85:
			d.RegularPortraits++
		case ar <= 1.15:
			d.Squares++
		case ar <= 1.6:
			d.Landscapes++
		default:
			d.WidePanoramics++
		}
	}
	return d
}
