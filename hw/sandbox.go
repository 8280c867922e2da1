// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package hw

import (
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Access is the host access type of a sandbox register.
type Access int

//go:generate go tool stringer -linecomment -type=Access
const (
	ACCESS_READ_WRITE = Access(0) // rw
	ACCESS_READ       = Access(1) // r
	ACCESS_WRITE      = Access(2) // w
)

// Block is the kind of sandbox register block.
type Block int

//go:generate go tool stringer -linecomment -type=Block
const (
	BLOCK_REGISTER_BANK = Block(0) // register_bank
	BLOCK_MEMORY_MAP    = Block(1) // memory_map
)

// SandboxRegister is the metadata of one named sandbox register.
type SandboxRegister struct {
	Name    string
	Block   Block
	Length  int    // Size in bytes.
	Address int    // Offset in bytes.
	Access  Access // Host access type.
	Event   *EventID
}

// Words returns the number of 32-bit words the register occupies.
func (reg SandboxRegister) Words() int {
	return max(1, (reg.Length+3)/4)
}

// Sandbox is the programmable logic region of a module.
type Sandbox interface {
	// Name of the sandbox.
	Name() string
	// Loaded is true once a firmware descriptor has been loaded.
	Loaded() bool
	// Registers lists the sandbox registers in address order.
	Registers() []SandboxRegister
	// Lookup finds a register by name.
	Lookup(name string) (reg SandboxRegister, ok bool)
	// Read the first word of a register.
	Read(name string) (value uint32, err error)
	// Write the first word of a register.
	Write(name string, value uint32) (err error)
	// ReadAt reads a word of a memory map.
	ReadAt(name string, index int) (value uint32, err error)
	// WriteAt writes a word of a memory map.
	WriteAt(name string, index int, value uint32) (err error)
}

// SandboxDescriptor is the register map of a sandbox firmware image.
type SandboxDescriptor struct {
	Name      string
	Registers []SandboxRegister
}

type yamlRegister struct {
	Name    string `yaml:"name"`
	Block   string `yaml:"block"`
	Length  int    `yaml:"length"`
	Address int    `yaml:"address"`
	Access  string `yaml:"access"`
	Event   string `yaml:"event"`
}

type yamlDescriptor struct {
	Name      string         `yaml:"name"`
	Registers []yamlRegister `yaml:"registers"`
}

// ParseSandbox reads a YAML sandbox descriptor.
func ParseSandbox(input io.Reader) (desc *SandboxDescriptor, err error) {
	var raw yamlDescriptor
	err = yaml.NewDecoder(input).Decode(&raw)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrDescriptorSyntax, err)
		return
	}

	out := &SandboxDescriptor{Name: raw.Name}
	seen := map[string]bool{}
	for _, yreg := range raw.Registers {
		reg := SandboxRegister{
			Name:    yreg.Name,
			Length:  yreg.Length,
			Address: yreg.Address,
		}
		fail := func(err error) error {
			return &ErrDescriptor{Register: yreg.Name, Err: err}
		}
		if len(reg.Name) == 0 || seen[reg.Name] {
			err = fail(ErrDescriptorSyntax)
			return
		}
		seen[reg.Name] = true
		if reg.Length <= 0 {
			reg.Length = 4
		}
		switch strings.ToLower(yreg.Block) {
		case "", "register_bank", "bank":
			reg.Block = BLOCK_REGISTER_BANK
		case "memory_map", "map":
			reg.Block = BLOCK_MEMORY_MAP
		default:
			err = fail(ErrDescriptorSyntax)
			return
		}
		switch strings.ToLower(yreg.Access) {
		case "", "rw":
			reg.Access = ACCESS_READ_WRITE
		case "r", "ro":
			reg.Access = ACCESS_READ
		case "w", "wo":
			reg.Access = ACCESS_WRITE
		default:
			err = fail(ErrDescriptorSyntax)
			return
		}
		if len(yreg.Event) != 0 {
			var id EventID
			id, err = ParseEvent(yreg.Event)
			if err != nil {
				err = fail(err)
				return
			}
			reg.Event = &id
		}
		out.Registers = append(out.Registers, reg)
	}

	slices.SortStableFunc(out.Registers, func(a, b SandboxRegister) int {
		return a.Address - b.Address
	})

	desc = out
	return
}

// LoadSandboxFS reads a YAML sandbox descriptor from a file system.
func LoadSandboxFS(filesys fs.FS, path string) (desc *SandboxDescriptor, err error) {
	inf, err := filesys.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	return ParseSandbox(inf)
}

// SimSandbox is an in-memory sandbox. Registers with an event binding drive
// the module's event line with their first word.
type SimSandbox struct {
	name   string
	module *SimModule

	mutex  sync.Mutex
	desc   *SandboxDescriptor
	values map[string][]uint32
}

var _ Sandbox = (*SimSandbox)(nil)

// Name of the sandbox.
func (sb *SimSandbox) Name() string {
	return sb.name
}

// Load installs a firmware descriptor, clearing all register values.
func (sb *SimSandbox) Load(desc *SandboxDescriptor) {
	sb.mutex.Lock()
	defer sb.mutex.Unlock()

	sb.desc = desc
	sb.values = make(map[string][]uint32, len(desc.Registers))
	for _, reg := range desc.Registers {
		sb.values[reg.Name] = make([]uint32, reg.Words())
	}
}

// Loaded is true once a descriptor has been loaded.
func (sb *SimSandbox) Loaded() bool {
	sb.mutex.Lock()
	defer sb.mutex.Unlock()

	return sb.desc != nil
}

// Registers lists the sandbox registers in address order.
func (sb *SimSandbox) Registers() []SandboxRegister {
	sb.mutex.Lock()
	defer sb.mutex.Unlock()

	if sb.desc == nil {
		return nil
	}
	return slices.Clone(sb.desc.Registers)
}

// Lookup finds a register by name.
func (sb *SimSandbox) Lookup(name string) (reg SandboxRegister, ok bool) {
	sb.mutex.Lock()
	defer sb.mutex.Unlock()

	return sb.lookup(name)
}

func (sb *SimSandbox) lookup(name string) (reg SandboxRegister, ok bool) {
	if sb.desc == nil {
		return
	}
	for _, reg = range sb.desc.Registers {
		if reg.Name == name {
			ok = true
			return
		}
	}
	reg = SandboxRegister{}
	return
}

// cell locates a register word. Caller holds the mutex.
func (sb *SimSandbox) cell(name string, index int) (reg SandboxRegister, words []uint32, err error) {
	if sb.desc == nil {
		err = ErrSandboxNotLoaded
		return
	}
	reg, ok := sb.lookup(name)
	if !ok {
		err = fmt.Errorf("%w: %q", ErrRegisterMissing, name)
		return
	}
	words = sb.values[name]
	if index < 0 || index >= len(words) {
		err = ErrRegisterOffset
	}
	return
}

// Read the first word of a register.
func (sb *SimSandbox) Read(name string) (value uint32, err error) {
	return sb.ReadAt(name, 0)
}

// Write the first word of a register.
func (sb *SimSandbox) Write(name string, value uint32) (err error) {
	return sb.WriteAt(name, 0, value)
}

// ReadAt reads a word of a register.
func (sb *SimSandbox) ReadAt(name string, index int) (value uint32, err error) {
	sb.mutex.Lock()
	defer sb.mutex.Unlock()

	reg, words, err := sb.cell(name, index)
	if err != nil {
		return
	}
	if reg.Access == ACCESS_WRITE {
		err = ErrRegisterAccess
		return
	}

	value = words[index]
	return
}

// Peek reads a word regardless of host access type, as the engine does.
func (sb *SimSandbox) Peek(name string) (value uint32, err error) {
	sb.mutex.Lock()
	defer sb.mutex.Unlock()

	_, words, err := sb.cell(name, 0)
	if err != nil {
		return
	}

	value = words[0]
	return
}

// WriteAt writes a word of a register.
func (sb *SimSandbox) WriteAt(name string, index int, value uint32) (err error) {
	sb.mutex.Lock()
	reg, words, err := sb.cell(name, index)
	if err == nil && reg.Access == ACCESS_READ {
		err = ErrRegisterAccess
	}
	if err != nil {
		sb.mutex.Unlock()
		return
	}
	words[index] = value
	sb.mutex.Unlock()

	if reg.Event != nil && index == 0 && sb.module != nil {
		if line := sb.module.Event(*reg.Event); line != nil {
			line.Set(value != 0)
		}
	}

	return
}
