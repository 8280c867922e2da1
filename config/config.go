package config

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

//go:embed sandbox/*.yaml
var sandboxFS embed.FS

// DEFAULT_SANDBOX is the embedded sandbox descriptor used by digitizers
// that do not name one.
const DEFAULT_SANDBOX = "sandbox/mySandbox.yaml"

// Module declares one instrument module.
type Module struct {
	Name     string `yaml:"name" hcl:"name,label"`
	Kind     string `yaml:"kind" hcl:"kind"`
	Chassis  int    `yaml:"chassis" hcl:"chassis,optional"`
	Slot     int    `yaml:"slot" hcl:"slot"`
	Channels int    `yaml:"channels" hcl:"channels,optional"`
	Sandbox  string `yaml:"sandbox" hcl:"sandbox,optional"` // Sandbox descriptor path.
}

// Loop overrides the loop's names, signals and budgets.
type Loop struct {
	Master  string   `yaml:"master" hcl:"master,optional"`
	Workers []string `yaml:"workers" hcl:"workers,optional"`

	CycleCount string `yaml:"cycle_count" hcl:"cycle_count,optional"`
	FSMValues  string `yaml:"fsm_values" hcl:"fsm_values,optional"`
	Counter    string `yaml:"counter" hcl:"counter,optional"`
	Quit       string `yaml:"quit" hcl:"quit,optional"`
	Wavenum    string `yaml:"wavenum" hcl:"wavenum,optional"`

	InitialCounter *int `yaml:"initial_counter" hcl:"initial_counter,optional"`
	BitsToShare    *int `yaml:"bits_to_share" hcl:"bits_to_share,optional"`

	Sandbox       string `yaml:"sandbox" hcl:"sandbox,optional"`
	DataRegister  string `yaml:"data_register" hcl:"data_register,optional"`
	EventRegister string `yaml:"event_register" hcl:"event_register,optional"`

	DataReady   string `yaml:"data_ready" hcl:"data_ready,optional"`
	ResetAction string `yaml:"reset_action" hcl:"reset_action,optional"`
	UserAction  string `yaml:"user_action" hcl:"user_action,optional"`

	Trigger    string `yaml:"trigger" hcl:"trigger,optional"`
	StartDelay *int   `yaml:"start_delay" hcl:"start_delay,optional"`
	Cycles     *int   `yaml:"cycles" hcl:"cycles,optional"`
	Prescaler  *int   `yaml:"prescaler" hcl:"prescaler,optional"`

	// Timing maps a state name to a budget expression.
	Timing map[string]string `yaml:"timing" hcl:"timing,optional"`
}

// File is a topology file.
type File struct {
	Chassis       []int     `yaml:"chassis" hcl:"chassis,optional"`
	SyncResources []string  `yaml:"sync_resources" hcl:"sync_resources,optional"`
	Clocks        []float64 `yaml:"clocks" hcl:"clocks,optional"`
	Modules       []Module  `yaml:"modules" hcl:"module,block"`
	Loop          *Loop     `yaml:"loop" hcl:"loop,block"`

	// Dir resolves relative sandbox descriptor paths.
	Dir fs.FS `yaml:"-"`
}

// Default returns the reference design: a digitizer in slot 8 and an AWG
// in slot 11 of chassis 1.
func Default() *File {
	return &File{
		Chassis:       []int{1},
		SyncResources: []string{"PXI_TRIGGER0", "PXI_TRIGGER1", "PXI_TRIGGER3"},
		Clocks:        []float64{10e6},
		Modules: []Module{
			{Name: "M3102A", Kind: "digitizer", Chassis: 1, Slot: 8},
			{Name: "M3202A", Kind: "awg", Chassis: 1, Slot: 11, Channels: 4},
		},
	}
}

// Load reads a topology file, choosing the format by extension.
func Load(path string) (file *File, err error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return
	}

	file, err = Parse(path, src)
	if err != nil {
		return
	}

	file.Dir = os.DirFS(filepath.Dir(path))
	return
}

// Parse decodes a topology from source, choosing the format by the
// filename's extension.
func Parse(filename string, src []byte) (file *File, err error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		file, err = parseYAML(src)
	case ".hcl":
		file, err = parseHCL(filename, src)
	default:
		err = fmt.Errorf("%w: %q", ErrFormat, filename)
	}
	return
}

func parseYAML(src []byte) (file *File, err error) {
	var out File
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	err = dec.Decode(&out)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSyntax, err)
		return
	}

	file = &out
	return
}

// hclContext holds the variables an HCL topology may refer to.
func hclContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"clock_ns": cty.NumberIntVal(10),
			"forever":  cty.NumberIntVal(-1),
		},
	}
}

func parseHCL(filename string, src []byte) (file *File, err error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		err = fmt.Errorf("%w: %w", ErrSyntax, diags)
		return
	}

	var out File
	diags = gohcl.DecodeBody(hclFile.Body, hclContext(), &out)
	if diags.HasErrors() {
		err = fmt.Errorf("%w: %w", ErrSyntax, diags)
		return
	}

	file = &out
	return
}
