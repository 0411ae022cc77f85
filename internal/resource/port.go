package resource

import "fmt"

// Port is a maritime trade port. A zero Kind means the generic 3:1 port.
type Port struct {
	Ratio int  `json:"ratio"`
	Kind  Kind `json:"kind,omitempty"`
}

func (p Port) String() string {
	if p.Kind == "" {
		return fmt.Sprintf("%d:1 PORT", p.Ratio)
	}
	return fmt.Sprintf("%d:1 %s", p.Ratio, p.Kind)
}

// BankRatio returns the best exchange rate the given ports allow when
// giving kind k to the bank. Without ports the standard rate is 4:1.
func BankRatio(ports []Port, k Kind) int {
	ratio := 4
	for _, p := range ports {
		if p.Kind == "" && p.Ratio < ratio {
			ratio = p.Ratio
		}
		if p.Kind == k && p.Ratio < ratio {
			ratio = p.Ratio
		}
	}
	return ratio
}
