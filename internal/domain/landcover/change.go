package landcover

import (
	"fmt"
	"strconv"
)

// Change compares the primary landcover at the query date with the same inputs one year earlier.
// Unchanged pixels keep their class; changed pixels get the previous and current codes concatenated.
func Change(cfg Config, pixel CharacterizedPixel) (int, error) {
	current := Landcover(cfg, pixel, 0)
	prior, err := CharacterizePixel(cfg, pixel.Px, pixel.Py, ShiftYears(pixel.Date, -1), pixel.Inputs)
	if err != nil {
		return 0, err
	}
	previous := Landcover(cfg, prior, 0)
	if previous == current {
		return current, nil
	}
	return concatCodes(previous, current)
}

func concatCodes(previous, current int) (int, error) {
	code, err := strconv.Atoi(strconv.Itoa(previous) + strconv.Itoa(current))
	if err != nil {
		return 0, fmt.Errorf("encode change %d -> %d: %w", previous, current, err)
	}
	return code, nil
}
