package metadata

import "github.com/google/uuid"

/**
 * @brief Identity of a compiled shader program. A program whose input
 * signature changes must be given a new identity, since input layouts are
 * cached per identity.
 */
type ShaderID uuid.UUID

/** @brief No shader bound. */
var NilShader = ShaderID(uuid.Nil)

func NewShaderID() ShaderID {
	return ShaderID(uuid.New())
}

func (s ShaderID) IsNil() bool {
	return s == NilShader
}

func (s ShaderID) String() string {
	return uuid.UUID(s).String()
}

type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageHull
	ShaderStageDomain
	ShaderStageGeometry
	ShaderStagePixel
	ShaderStageCompute
)

/**
 * @brief One entry of a vertex shader input signature.
 */
type ShaderInput struct {
	SemanticName  string
	SemanticIndex uint32
	/** @brief Number of 32-bit float components read by the shader. */
	Components uint32
}

/**
 * @brief A shader program as known to a backend.
 */
type Shader struct {
	ID    ShaderID
	Name  string
	Stage ShaderStage
	/** @brief The vertex inputs read by the program; only set for vertex shaders. */
	Signature []ShaderInput
}

// MissingInput returns the first input of the signature that no element
// provides with a matching semantic and at least as many components.
func (s *Shader) MissingInput(elements []InputElementDesc) (ShaderInput, bool) {
	for _, input := range s.Signature {
		if !provides(elements, input) {
			return input, true
		}
	}
	return ShaderInput{}, false
}

func provides(elements []InputElementDesc, input ShaderInput) bool {
	for _, e := range elements {
		if e.SemanticName == input.SemanticName && e.SemanticIndex == input.SemanticIndex {
			return e.Format.Components() >= input.Components
		}
	}
	return false
}
