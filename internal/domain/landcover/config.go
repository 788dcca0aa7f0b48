package landcover

import (
	"errors"
	"fmt"
	"strings"
)

// Config is the read-only classification configuration shared by every pixel computation.
type Config struct {
	// Classes gives the meaning of each position in a prediction probability vector.
	Classes []string
	// ClassCodes maps class names, including NoneClass, to the values written to products.
	ClassCodes map[string]int
	NoneClass  string
	GrassClass string
	TreeClass  string
	Fill       FillPolicy
	Landcover  LandcoverDefaults
	Confidence ConfidenceDefaults
}

// FillPolicy controls whether a class spills over from the nearest segment.
type FillPolicy struct {
	Begin  bool
	End    bool
	SameLC bool
	DiffLC bool
}

// LandcoverDefaults are the sentinel landcover values.
type LandcoverDefaults struct {
	Insufficient int
	Between      int
	NoModel      int
}

// ConfidenceDefaults are the confidence codes for every non-probability scenario.
type ConfidenceDefaults struct {
	Back       int
	AfterBreak int
	Forwards   int
	Growth     int
	Decline    int
	SameLC     int
	DiffLC     int
	None       int
	NoModel    int
}

// DefaultConfig returns the standard eight class land cover scheme.
func DefaultConfig() Config {
	return Config{
		Classes: []string{"developed", "cropland", "grass", "tree", "water", "wetland", "snow", "barren"},
		ClassCodes: map[string]int{
			"none":      0,
			"developed": 1,
			"cropland":  2,
			"grass":     3,
			"tree":      4,
			"water":     5,
			"wetland":   6,
			"snow":      7,
			"barren":    8,
		},
		NoneClass:  "none",
		GrassClass: "grass",
		TreeClass:  "tree",
		Fill:       FillPolicy{Begin: true, End: true, SameLC: true, DiffLC: true},
		Landcover:  LandcoverDefaults{Insufficient: 9, Between: 10, NoModel: 0},
		Confidence: ConfidenceDefaults{
			Back:       211,
			AfterBreak: 212,
			Forwards:   213,
			Growth:     152,
			Decline:    153,
			SameLC:     201,
			DiffLC:     202,
			None:       0,
			NoModel:    0,
		},
	}
}

// Validate checks that every class the engine may emit has a code.
func (c Config) Validate() error {
	if len(c.Classes) == 0 {
		return errors.New("classes cannot be empty")
	}
	for _, name := range c.Classes {
		if _, ok := c.ClassCodes[name]; !ok {
			return fmt.Errorf("class %q has no code", name)
		}
	}
	for _, name := range []string{c.NoneClass, c.GrassClass, c.TreeClass} {
		if strings.TrimSpace(name) == "" {
			return errors.New("none, grass and tree classes must be named")
		}
		if _, ok := c.ClassCodes[name]; !ok {
			return fmt.Errorf("class %q has no code", name)
		}
	}
	// Change codes are decimal concatenations, so every landcover value must be non-negative.
	for name, code := range c.ClassCodes {
		if code < 0 {
			return fmt.Errorf("class %q has negative code %d", name, code)
		}
	}
	if c.Landcover.Insufficient < 0 || c.Landcover.Between < 0 || c.Landcover.NoModel < 0 {
		return errors.New("landcover sentinels cannot be negative")
	}
	return nil
}

// NoneCode is the value returned when no class can be decided.
func (c Config) NoneCode() int {
	return c.ClassCodes[c.NoneClass]
}

func (c Config) code(name string) int {
	if v, ok := c.ClassCodes[name]; ok {
		return v
	}
	return c.NoneCode()
}
