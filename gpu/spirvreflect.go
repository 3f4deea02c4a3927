package gpu

import "strings"

// SPIR-V opcode numbers this reader cares about. Only a handful of instructions carry reflection-relevant
// information (names, decorations, variable storage classes, image types); everything else is skipped by
// its encoded word count, the same "walk the stream, branch on opcode, skip the rest" shape the teacher's
// own cgo-side C struct readers use (vulkan/device.go's queue-family and extension scans).
const (
	opName                         = 5
	opMemberName                   = 6
	opTypeImage                    = 25
	opTypeSampler                  = 26
	opTypeSampledImage             = 27
	opTypeStruct                   = 30
	opTypePointer                  = 32
	opTypeAccelerationStructureKHR = 4472
	opVariable                     = 59
	opDecorate                     = 71
	opMemberDecorate               = 72
)

// imageSampledDisallowed is OpTypeImage's "Sampled" operand value of 2, meaning the image is used with
// OpImageRead/OpImageWrite (a storage image) rather than sampled through a combined sampler. See the SPIR-V
// spec's OpTypeImage operand layout: result id, sampled type, Dim, Depth, Arrayed, MS, Sampled, Format[, ...].
const imageSampledDisallowed = 2

const (
	decorationBinding       = 33
	decorationDescriptorSet = 34
)

const (
	storageClassUniformConstant = 0
	storageClassUniform         = 2
	storageClassStorageBuffer   = 12
)

// BindingKind classifies a reflected descriptor binding by how the pipeline cache should wire it into a
// VkDescriptorSetLayoutBinding.
type BindingKind int

const (
	BindingUniformBuffer BindingKind = iota
	BindingStorageBuffer
	BindingCombinedImageSampler
	BindingStorageImage
	BindingAccelerationStructure
)

// ReflectedBinding is one descriptor binding recovered from a SPIR-V module's decorations.
type ReflectedBinding struct {
	Name    string
	Set     uint32
	Binding uint32
	Kind    BindingKind
}

// ReflectModule walks a SPIR-V word stream and recovers its descriptor bindings. This is a hand-written
// reader rather than a call into a reflection library because no SPIR-V reflection dependency appears
// anywhere in the retrieved corpus — the teacher hand-rolls SPIR-V as []uint32 literals and never reads one
// back semantically, so there is nothing in the corpus's own idiom to call out to (see DESIGN.md).
func ReflectModule(words []uint32) ([]ReflectedBinding, error) {
	if len(words) < 5 || words[0] != 0x07230203 {
		return nil, errf(KindShader, "not a SPIR-V module (bad magic number)")
	}

	names := make(map[uint32]string)
	bindings := make(map[uint32]uint32)
	sets := make(map[uint32]uint32)
	variableStorage := make(map[uint32]uint32)
	variableType := make(map[uint32]uint32)
	typeKind := make(map[uint32]uint32)         // result id -> opcode (OpTypeImage/Sampler/SampledImage/AccelerationStructure)
	imageSampledOperand := make(map[uint32]uint32) // OpTypeImage result id -> its Sampled operand
	pointee := make(map[uint32]uint32)             // OpTypePointer result id -> pointed-to type id

	i := 5 // skip the 5-word header
	for i < len(words) {
		instr := words[i]
		wordCount := instr >> 16
		opcode := instr & 0xFFFF
		if wordCount == 0 || i+int(wordCount) > len(words) {
			break
		}
		body := words[i+1 : i+int(wordCount)]

		switch opcode {
		case opName:
			if len(body) >= 1 {
				names[body[0]] = decodeLiteralString(body[1:])
			}
		case opDecorate:
			if len(body) >= 2 {
				target := body[0]
				switch body[1] {
				case decorationBinding:
					if len(body) >= 3 {
						bindings[target] = body[2]
					}
				case decorationDescriptorSet:
					if len(body) >= 3 {
						sets[target] = body[2]
					}
				}
			}
		case opTypeImage:
			if len(body) >= 1 {
				typeKind[body[0]] = opcode
			}
			if len(body) >= 7 {
				imageSampledOperand[body[0]] = body[6]
			}
		case opTypeSampler, opTypeSampledImage, opTypeAccelerationStructureKHR:
			if len(body) >= 1 {
				typeKind[body[0]] = opcode
			}
		case opTypePointer:
			// OpTypePointer: result id, storage class, type
			if len(body) >= 3 {
				pointee[body[0]] = body[2]
			}
		case opVariable:
			// OpVariable: result type (an OpTypePointer), result id, storage class, [initializer]
			if len(body) >= 3 {
				resultType := body[0]
				resultID := body[1]
				storageClass := body[2]
				variableStorage[resultID] = storageClass
				variableType[resultID] = resultType
			}
		}

		i += int(wordCount)
	}

	var out []ReflectedBinding
	for id, storage := range variableStorage {
		binding, hasBinding := bindings[id]
		if !hasBinding {
			continue
		}
		set := sets[id]
		name := stripReflectionPrefix(names[id])

		kind := BindingUniformBuffer
		switch storage {
		case storageClassUniformConstant:
			typ := pointee[variableType[id]]
			switch typeKind[typ] {
			case opTypeSampledImage:
				kind = BindingCombinedImageSampler
			case opTypeImage:
				if imageSampledOperand[typ] == imageSampledDisallowed {
					kind = BindingStorageImage
				} else {
					kind = BindingCombinedImageSampler
				}
			case opTypeAccelerationStructureKHR:
				kind = BindingAccelerationStructure
			}
		case storageClassStorageBuffer:
			kind = BindingStorageBuffer
		case storageClassUniform:
			kind = BindingUniformBuffer
		}

		out = append(out, ReflectedBinding{Name: name, Set: set, Binding: binding, Kind: kind})
	}
	return out, nil
}

// decodeLiteralString decodes a SPIR-V literal string: ASCII packed 4 bytes per word, little-endian,
// NUL-terminated.
func decodeLiteralString(words []uint32) string {
	var b strings.Builder
	for _, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return b.String()
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

// stripReflectionPrefix turns a GLSL-convention name like "gAlbedo" into "Albedo": leading lowercase tag
// letter followed by an uppercase letter is stripped, matching the shader-binding naming convention
// SPEC_FULL.md §4.4 calls out.
func stripReflectionPrefix(name string) string {
	if len(name) >= 2 && name[0] >= 'a' && name[0] <= 'z' && name[1] >= 'A' && name[1] <= 'Z' {
		return name[1:]
	}
	return name
}
