package atlas

import "slices"

// Printable ASCII range packed into every atlas.
const (
	FirstASCII = ' '
	LastASCII  = '~'
)

// Charset returns printable ASCII plus extra, sorted and de-duplicated.
func Charset(extra []rune) []rune {
	rs := make([]rune, 0, LastASCII-FirstASCII+1+len(extra))
	for r := rune(FirstASCII); r <= LastASCII; r++ {
		rs = append(rs, r)
	}
	rs = append(rs, extra...)
	slices.Sort(rs)
	return slices.Compact(rs)
}
