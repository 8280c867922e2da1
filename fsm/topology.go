package fsm

import (
	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/program"
)

// Timing is the time budget of every loop state, in ns.
type Timing struct {
	Wait          int64 // Wait for the data ready event.
	Read          int64 // Read the waveform number.
	Share         int64 // Junction sharing the waveform number.
	Reset         int64 // Reset the FPGA state machine.
	Queue         int64 // Queue one waveform.
	QueueDone     int64 // Junction after queueing.
	Trigger       int64 // Trigger every AWG channel.
	Increment     int64 // Count the cycle.
	Jump          int64 // Jump back to Start.
	End           int64 // End of sequence.
	WaitTimeoutNs int64 // Data ready timeout; WAIT_FOREVER blocks.
}

// DefaultTiming returns the loop timing of the reference design.
func DefaultTiming() Timing {
	return Timing{
		Wait:          10,
		Read:          20,
		Share:         10,
		Reset:         10,
		Queue:         10,
		QueueDone:     1000,
		Trigger:       2000,
		Increment:     10,
		Jump:          10000,
		End:           10,
		WaitTimeoutNs: program.WAIT_FOREVER,
	}
}

// Topology declares the loop: register names, signals, sandbox
// registers, sharing width and platform resources.
type Topology struct {
	Master  string   // Master engine name.
	Workers []string // Worker engine names; derived from module names when empty.

	CycleCount string // Master cycle counter register.
	FSMValues  string // Master register the waveform number is read into.
	Counter    string // Master register the host counts presses in.
	Quit       string // Master quit flag register.
	Wavenum    string // Worker register receiving the waveform number.

	InitialCounter uint32
	BitsToShare    int

	Sandbox       string // Master FPGA sandbox.
	DataRegister  string // Sandbox register holding the waveform number.
	EventRegister string // Sandbox register driving the data ready event.

	DataReady   hw.EventID  // Data ready event of the master.
	ResetAction hw.ActionID // Action resetting the FPGA state machine.
	UserAction  hw.ActionID // Spare FPGA user action bound on the master.

	Queue hw.Queue // Waveform queue options.

	Timing        Timing
	Chassis       []int
	SyncResources []hw.TriggerLine
	Clocks        []float64
}

// DefaultTopology returns the reference design's loop.
func DefaultTopology() Topology {
	return Topology{
		Master:         "MasterEngine",
		CycleCount:     "cycleCount",
		FSMValues:      "HviRegFSMValues",
		Counter:        "RegCounter",
		Quit:           "HviMemoryMap",
		Wavenum:        "HviRegWavenumStore",
		InitialCounter: 1000,
		BitsToShare:    16,
		Sandbox:        hw.SANDBOX_DEFAULT,
		DataRegister:   "Register_Bank_HviAnalogChannelsIn",
		EventRegister:  "Register_Bank_HviEvent4",
		DataReady:      hw.FpgaUserEvent(4),
		ResetAction:    hw.FpgaUserAction(7),
		UserAction:     hw.FpgaUserAction(4),
		Queue: hw.Queue{
			Trigger:    hw.TRIGGER_SW_HVI,
			StartDelay: 0,
			Cycles:     1,
			Prescaler:  0,
		},
		Timing:        DefaultTiming(),
		SyncResources: []hw.TriggerLine{hw.TRIGGER_PXI0, hw.TRIGGER_PXI1, hw.TRIGGER_PXI3},
		Clocks:        []float64{10e6},
	}
}
