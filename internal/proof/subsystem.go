// Copyright (c) 2024, The VEKOS developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proof

// Subsystem tags which collaborator produced an OperationProof. Each
// subsystem owns exactly one hash chain in the verification registry.
type Subsystem uint8

const (
	// The zero value is invalid on its own; it exists so the zero value of
	// Subsystem is never mistaken for a real subsystem.
	_ Subsystem = iota

	// SubsystemBoot covers stage transitions of the boot-verification driver.
	SubsystemBoot
	// SubsystemMemory covers allocator/page-table operations.
	SubsystemMemory
	// SubsystemFilesystem covers VFS mutations.
	SubsystemFilesystem
	// SubsystemProcess covers process lifecycle operations.
	SubsystemProcess
)

// All lists every known subsystem, in the fixed order the registry
// replays chains.
var All = []Subsystem{SubsystemBoot, SubsystemMemory, SubsystemFilesystem, SubsystemProcess}

func (s Subsystem) String() string {
	switch s {
	case SubsystemBoot:
		return "Boot"
	case SubsystemMemory:
		return "Memory"
	case SubsystemFilesystem:
		return "Filesystem"
	case SubsystemProcess:
		return "Process"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the closed set of known subsystems.
func (s Subsystem) Valid() bool {
	switch s {
	case SubsystemBoot, SubsystemMemory, SubsystemFilesystem, SubsystemProcess:
		return true
	default:
		return false
	}
}
