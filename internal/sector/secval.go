package sector

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sanmill-go/morrispdb/internal/board"
)

// SecVals holds the contents of a "<variant>.secval" file: the virtual
// win/loss sentinels and the per-sector canonical value table, grounded on
// the Sector value file format in spec.md §3/§6.
type SecVals struct {
	VirtLossVal int16
	VirtWinVal  int16
	Values      map[Id]int16
}

// Sval returns the canonical sector value for id, or 0 if the sector was
// not listed (e.g. an unreachable sector).
func (sv *SecVals) Sval(id Id) int16 {
	if sv == nil {
		return 0
	}
	return sv.Values[id]
}

// LoadSecVals reads "<variant>.secval" from dir.
func LoadSecVals(dir string, v board.Variant) (*SecVals, error) {
	f, err := os.Open(dir + string(os.PathSeparator) + v.String() + ".secval")
	if err != nil {
		return nil, fmt.Errorf("sector: open secval: %w", err)
	}
	defer f.Close()
	return ParseSecVals(f)
}

// ParseSecVals parses the "<variant>.secval" text format from r.
func ParseSecVals(r io.Reader) (*SecVals, error) {
	sc := bufio.NewScanner(r)
	sv := &SecVals{Values: make(map[Id]int16)}

	readLine := func(label string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", fmt.Errorf("sector: reading %s: %w", label, err)
			}
			return "", fmt.Errorf("sector: unexpected end of secval file reading %s", label)
		}
		return strings.TrimSpace(sc.Text()), nil
	}

	lossLine, err := readLine("virt_loss_val")
	if err != nil {
		return nil, err
	}
	loss, err := parseLabeledInt(lossLine, "virt_loss_val:")
	if err != nil {
		return nil, err
	}
	sv.VirtLossVal = int16(loss)

	winLine, err := readLine("virt_win_val")
	if err != nil {
		return nil, err
	}
	win, err := parseLabeledInt(winLine, "virt_win_val:")
	if err != nil {
		return nil, err
	}
	sv.VirtWinVal = int16(win)

	countLine, err := readLine("count")
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(countLine)
	if err != nil {
		return nil, fmt.Errorf("sector: bad secval count %q: %w", countLine, err)
	}

	for i := 0; i < count; i++ {
		line, err := readLine(fmt.Sprintf("row %d", i))
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("sector: malformed secval row %q", line)
		}
		nums := make([]int, 5)
		for j, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("sector: bad secval field %q: %w", f, err)
			}
			nums[j] = n
		}
		sv.Values[Id{W: nums[0], B: nums[1], WF: nums[2], BF: nums[3]}] = int16(nums[4])
	}

	return sv, nil
}

func parseLabeledInt(line, label string) (int, error) {
	if !strings.HasPrefix(line, label) {
		return 0, fmt.Errorf("sector: expected %q, got %q", label, line)
	}
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, label)))
	if err != nil {
		return 0, fmt.Errorf("sector: bad value in %q: %w", line, err)
	}
	return n, nil
}
