package registers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Indices into the primary register file.
const (
	Zero = 0
	AT   = 1
	V0   = 2
	V1   = 3
	A0   = 4
	A1   = 5
	A2   = 6
	A3   = 7
	T0   = 8
	S0   = 16
	T8   = 24
	K0   = 26
	GP   = 28
	SP   = 29
	FP   = 30
	RA   = 31
	PC   = 32
	HI   = 33
	LO   = 34

	PrimarySize = 35
	FloatSize   = 32
)

var primaryNames = [PrimarySize]string{
	"$0", "$at", "$v0", "$v1", "$a0", "$a1", "$a2", "$a3",
	"$t0", "$t1", "$t2", "$t3", "$t4", "$t5", "$t6", "$t7",
	"$s0", "$s1", "$s2", "$s3", "$s4", "$s5", "$s6", "$s7",
	"$t8", "$t9", "$k0", "$k1", "$gp", "$sp", "$fp", "$ra",
	"pc", "hi", "lo",
}

var primaryAliases = map[string]int{
	"$zero": Zero,
	"$s8":   FP,
}

var (
	primaryIndex = buildPrimaryIndex()
	floatNames   = buildFloatNames()
	floatIndex   = lo.Invert(floatNames)
)

func buildPrimaryIndex() map[string]int {
	index := lo.Assign(
		lo.SliceToMap(lo.Range(PrimarySize), func(i int) (string, int) {
			return primaryNames[i], i
		}),
		primaryAliases,
	)
	for i := 0; i < 32; i++ {
		index["$"+strconv.Itoa(i)] = i
	}
	return index
}

func buildFloatNames() map[int]string {
	names := make(map[int]string, FloatSize)
	for i := 0; i < FloatSize; i++ {
		names[i] = fmt.Sprintf("$f%d", i)
	}
	return names
}

// Index resolves a primary register name such as "$t0", "$8" or "pc".
func Index(name string) (int, bool) {
	i, ok := primaryIndex[strings.ToLower(name)]
	return i, ok
}

// Name returns the canonical name of a primary register.
func Name(index int) string {
	if index < 0 || index >= PrimarySize {
		return fmt.Sprintf("$?%d", index)
	}
	return primaryNames[index]
}

// FloatIndex resolves "$f0".."$f31".
func FloatIndex(name string) (int, bool) {
	i, ok := floatIndex[strings.ToLower(name)]
	return i, ok
}

// FloatName returns "$fN".
func FloatName(index int) string {
	if name, ok := floatNames[index]; ok {
		return name
	}
	return fmt.Sprintf("$f?%d", index)
}
