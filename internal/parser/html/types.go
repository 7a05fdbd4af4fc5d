package html

// StyleType is the type attribute value marking a stylesheet as ISS
const StyleType = "text/iss"

// Region is the content of a <style> element found in an HTML document
type Region struct {
	Content string
	// Type is the element's type attribute, empty when absent
	Type      string
	StartLine uint
	StartCol  uint
}

// IsStylesheet reports whether the region holds ISS source
func (r Region) IsStylesheet() bool {
	return r.Type == StyleType || r.Type == "text/x-iss"
}
