// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "fmt"

// ShaderVariant selects one of the precompiled text shading pipelines.
type ShaderVariant uint8

const (
	// VariantStandard is the base distance field fill with a soft glow.
	VariantStandard ShaderVariant = iota

	// VariantNeon emphasizes a glowing outline band around the fill.
	VariantNeon

	// VariantTitle combines fill, outline and glow with soft edges.
	VariantTitle

	variantCount
)

// VariantUnknown is an invalid variant. Devices reject it.
const VariantUnknown = variantCount

// Variants lists every shader variant.
func Variants() []ShaderVariant {
	return []ShaderVariant{VariantStandard, VariantNeon, VariantTitle}
}

// Valid reports whether v is a known variant.
func (v ShaderVariant) Valid() bool {
	return v < variantCount
}

// FragmentEntryPoint returns the WGSL fragment entry point of the variant.
func (v ShaderVariant) FragmentEntryPoint() string {
	switch v {
	case VariantStandard:
		return "fs_standard"
	case VariantNeon:
		return "fs_neon"
	case VariantTitle:
		return "fs_title"
	}
	return ""
}

func (v ShaderVariant) String() string {
	switch v {
	case VariantStandard:
		return "standard"
	case VariantNeon:
		return "neon"
	case VariantTitle:
		return "title"
	}
	return fmt.Sprintf("ShaderVariant(%d)", uint8(v))
}
