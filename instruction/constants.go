package instruction

// Field positions of the 32-bit instruction word.
//
//	   6      5     5     5     5      6 bits
//	[  op  |  rs |  rt |  rd |shamt| funct]  R
//	[  op  |  rs |  rt | address/immediate]  I
//	[  op  |        target address        ]  J
//	[  op  | fmt |  ft |  fs |  fd | funct]  FR
//	[  op  | fmt |  ft |     immediate    ]  FI
const (
	OpShift   = 26
	RsShift   = 21
	RtShift   = 16
	RdShift   = 11
	ShShift   = 6
	FuncShift = 0

	FmtShift = 21
	FtShift  = 16
	FsShift  = 11
	FdShift  = 6

	OpMask   = 0xfc000000
	RsMask   = 0x03e00000
	RtMask   = 0x001f0000
	RdMask   = 0x0000f800
	ShMask   = 0x000007c0
	FuncMask = 0x0000003f
	ImmMask  = 0x0000ffff
	AddrMask = 0x03ffffff

	FmtMask = RsMask
	FtMask  = RtMask
	FsMask  = RdMask
	FdMask  = ShMask
)

// Opcodes.
const (
	OpSpecial uint8 = 0x00
	OpJ       uint8 = 0x02
	OpJal     uint8 = 0x03
	OpBeq     uint8 = 0x04
	OpBne     uint8 = 0x05
	OpBlez    uint8 = 0x06
	OpBgtz    uint8 = 0x07
	OpAddi    uint8 = 0x08
	OpAddiu   uint8 = 0x09
	OpSlti    uint8 = 0x0a
	OpSltiu   uint8 = 0x0b
	OpAndi    uint8 = 0x0c
	OpOri     uint8 = 0x0d
	OpXori    uint8 = 0x0e
	OpLui     uint8 = 0x0f
	OpCop1    uint8 = 0x11
	OpLb      uint8 = 0x20
	OpLh      uint8 = 0x21
	OpLw      uint8 = 0x23
	OpLbu     uint8 = 0x24
	OpLhu     uint8 = 0x25
	OpSb      uint8 = 0x28
	OpSh      uint8 = 0x29
	OpSw      uint8 = 0x2b
	OpLl      uint8 = 0x30
	OpLwc1    uint8 = 0x31
	OpLdc1    uint8 = 0x35
	OpSc      uint8 = 0x38
	OpSwc1    uint8 = 0x39
	OpSdc1    uint8 = 0x3d
)

// Function codes of OpSpecial.
const (
	FnSll     uint8 = 0x00
	FnSrl     uint8 = 0x02
	FnSra     uint8 = 0x03
	FnSllv    uint8 = 0x04
	FnSrlv    uint8 = 0x06
	FnSrav    uint8 = 0x07
	FnJr      uint8 = 0x08
	FnJalr    uint8 = 0x09
	FnSyscall uint8 = 0x0c
	FnMfhi    uint8 = 0x10
	FnMthi    uint8 = 0x11
	FnMflo    uint8 = 0x12
	FnMtlo    uint8 = 0x13
	FnMult    uint8 = 0x18
	FnMultu   uint8 = 0x19
	FnDiv     uint8 = 0x1a
	FnDivu    uint8 = 0x1b
	FnAdd     uint8 = 0x20
	FnAddu    uint8 = 0x21
	FnSub     uint8 = 0x22
	FnSubu    uint8 = 0x23
	FnAnd     uint8 = 0x24
	FnOr      uint8 = 0x25
	FnXor     uint8 = 0x26
	FnNor     uint8 = 0x27
	FnSlt     uint8 = 0x2a
	FnSltu    uint8 = 0x2b
)

// Coprocessor 1 formats.
const (
	FmtMF uint8 = 0x00
	FmtMT uint8 = 0x04
	FmtBC uint8 = 0x08
	FmtS  uint8 = 0x10
	FmtD  uint8 = 0x11
	FmtW  uint8 = 0x14
)

// Coprocessor 1 function codes.
const (
	FnFAdd  uint8 = 0x00
	FnFSub  uint8 = 0x01
	FnFMul  uint8 = 0x02
	FnFDiv  uint8 = 0x03
	FnFSqrt uint8 = 0x04
	FnFAbs  uint8 = 0x05
	FnFMov  uint8 = 0x06
	FnFNeg  uint8 = 0x07
	FnCvtS  uint8 = 0x20
	FnCvtD  uint8 = 0x21
	FnCvtW  uint8 = 0x24
	FnCEq   uint8 = 0x32
	FnCLt   uint8 = 0x3c
	FnCLe   uint8 = 0x3e
)
