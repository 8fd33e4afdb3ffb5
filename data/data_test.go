package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDirective(t *testing.T) {
	type testcase struct {
		directive string
		values    []string
		want      []byte
	}
	cases := map[string]testcase{
		"asciiz":        {directive: ".asciiz", values: []string{`"foo"`}, want: []byte{102, 111, 111, 0}},
		"asciiz each":   {directive: ".asciiz", values: []string{`"a"`, `"b"`}, want: []byte{'a', 0, 'b', 0}},
		"ascii":         {directive: ".ascii", values: []string{`"foo"`}, want: []byte{102, 111, 111}},
		"ascii escapes": {directive: ".ascii", values: []string{`"a\n\t\"\\"`}, want: []byte{'a', '\n', '\t', '"', '\\'}},
		"word":          {directive: ".word", values: []string{"42"}, want: []byte{0, 0, 0, 42}},
		"word negative": {directive: ".word", values: []string{"-1", "0x01020304"}, want: []byte{0xff, 0xff, 0xff, 0xff, 1, 2, 3, 4}},
		"half":          {directive: ".half", values: []string{"0x1234", "-2"}, want: []byte{0x12, 0x34, 0xff, 0xfe}},
		"byte":          {directive: ".byte", values: []string{"1", "'a'", "-1", "'\\n'"}, want: []byte{1, 'a', 0xff, '\n'}},
		"space":         {directive: ".space", values: []string{"3"}, want: []byte{0, 0, 0}},
		"float":         {directive: ".float", values: []string{"42.42"}, want: []byte{0x42, 0x29, 0xae, 0x14}},
		"double":        {directive: ".double", values: []string{"42.42"}, want: []byte{0x40, 0x45, 0x35, 0xc2, 0x8f, 0x5c, 0x28, 0xf6}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := FromDirective(tc.directive, tc.values)
			require.NoError(t, err)
			assert.Equal(t, tc.directive, d.Directive())
			assert.Equal(t, tc.want, d.Bytes())
			assert.Equal(t, len(tc.want), d.Size())
		})
	}
}

func TestSpace80(t *testing.T) {
	d, err := FromDirective(".space", []string{"80"})
	require.NoError(t, err)
	assert.Equal(t, 80, d.Size())
	assert.Equal(t, make([]byte, 80), d.Bytes())
}

func TestFromDirectiveErrors(t *testing.T) {
	type testcase struct {
		directive string
		values    []string
		err       error
	}
	cases := map[string]testcase{
		"unknown":      {directive: ".globl", values: []string{"main"}, err: ErrUnknownDirective},
		"word range":   {directive: ".word", values: []string{"0x100000000"}, err: ErrBadValue},
		"byte range":   {directive: ".byte", values: []string{"256"}, err: ErrBadValue},
		"word label":   {directive: ".word", values: []string{"foo"}, err: ErrBadValue},
		"unterminated": {directive: ".asciiz", values: []string{`"abc`}, err: ErrBadValue},
		"unquoted":     {directive: ".ascii", values: []string{"abc"}, err: ErrBadValue},
		"long char":    {directive: ".byte", values: []string{"'ab'"}, err: ErrBadValue},
		"space count":  {directive: ".space", values: []string{"1", "2"}, err: ErrBadValue},
		"space neg":    {directive: ".space", values: []string{"-1"}, err: ErrBadValue},
		"space huge":   {directive: ".space", values: []string{"0x7fffffffffffffff"}, err: ErrBadValue},
		"space 4GiB":   {directive: ".space", values: []string{"0xffffffff"}, err: ErrBadValue},
		"align":        {directive: ".align", values: []string{"2"}, err: ErrUnknownDirective},
		"float":        {directive: ".float", values: []string{"x"}, err: ErrBadValue},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var err error
			assert.NotPanics(t, func() { _, err = FromDirective(tc.directive, tc.values) })
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestIsDirective(t *testing.T) {
	assert.True(t, IsDirective(".asciiz"))
	assert.False(t, IsDirective(".text"))
}
