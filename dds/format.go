package dds

import "fmt"

// Format is a pixel format tag. DXGI formats use their DXGI_FORMAT value;
// layouts that only exist in legacy D3D9 files use values at or above 0x10000.
type Format uint32

const (
	FormatUnknown Format = 0

	FormatR32G32B32A32Typeless Format = 1
	FormatR32G32B32A32Float    Format = 2
	FormatR32G32B32A32Uint     Format = 3
	FormatR32G32B32A32Sint     Format = 4
	FormatR32G32B32Typeless    Format = 5
	FormatR32G32B32Float       Format = 6
	FormatR16G16B16A16Typeless Format = 9
	FormatR16G16B16A16Float    Format = 10
	FormatR16G16B16A16Unorm    Format = 11
	FormatR16G16B16A16Uint     Format = 12
	FormatR16G16B16A16Snorm    Format = 13
	FormatR32G32Typeless       Format = 15
	FormatR32G32Float          Format = 16
	FormatR32G8X24Typeless     Format = 19
	FormatD32FloatS8X24Uint    Format = 20
	FormatR10G10B10A2Typeless  Format = 23
	FormatR10G10B10A2Unorm     Format = 24
	FormatR10G10B10A2Uint      Format = 25
	FormatR11G11B10Float       Format = 26
	FormatR8G8B8A8Typeless     Format = 27
	FormatR8G8B8A8Unorm        Format = 28
	FormatR8G8B8A8UnormSRGB    Format = 29
	FormatR8G8B8A8Uint         Format = 30
	FormatR8G8B8A8Snorm        Format = 31
	FormatR8G8B8A8Sint         Format = 32
	FormatR16G16Typeless       Format = 33
	FormatR16G16Float          Format = 34
	FormatR16G16Unorm          Format = 35
	FormatR16G16Uint           Format = 36
	FormatR16G16Snorm          Format = 37
	FormatR32Typeless          Format = 39
	FormatD32Float             Format = 40
	FormatR32Float             Format = 41
	FormatR32Uint              Format = 42
	FormatR24G8Typeless        Format = 44
	FormatD24UnormS8Uint       Format = 45
	FormatR8G8Typeless         Format = 48
	FormatR8G8Unorm            Format = 49
	FormatR8G8Uint             Format = 50
	FormatR8G8Snorm            Format = 51
	FormatR16Typeless          Format = 53
	FormatR16Float             Format = 54
	FormatD16Unorm             Format = 55
	FormatR16Unorm             Format = 56
	FormatR16Uint              Format = 57
	FormatR16Snorm             Format = 58
	FormatR8Typeless           Format = 60
	FormatR8Unorm              Format = 61
	FormatR8Uint               Format = 62
	FormatR8Snorm              Format = 63
	FormatA8Unorm              Format = 65
	FormatR9G9B9E5SharedExp    Format = 67
	FormatR8G8B8G8Unorm        Format = 68
	FormatG8R8G8B8Unorm        Format = 69
	FormatBC1Typeless          Format = 70
	FormatBC1Unorm             Format = 71
	FormatBC1UnormSRGB         Format = 72
	FormatBC2Typeless          Format = 73
	FormatBC2Unorm             Format = 74
	FormatBC2UnormSRGB         Format = 75
	FormatBC3Typeless          Format = 76
	FormatBC3Unorm             Format = 77
	FormatBC3UnormSRGB         Format = 78
	FormatBC4Typeless          Format = 79
	FormatBC4Unorm             Format = 80
	FormatBC4Snorm             Format = 81
	FormatBC5Typeless          Format = 82
	FormatBC5Unorm             Format = 83
	FormatBC5Snorm             Format = 84
	FormatB5G6R5Unorm          Format = 85
	FormatB5G5R5A1Unorm        Format = 86
	FormatB8G8R8A8Unorm        Format = 87
	FormatB8G8R8X8Unorm        Format = 88
	FormatB8G8R8A8Typeless     Format = 90
	FormatB8G8R8A8UnormSRGB    Format = 91
	FormatB8G8R8X8Typeless     Format = 92
	FormatB8G8R8X8UnormSRGB    Format = 93
	FormatBC6HTypeless         Format = 94
	FormatBC6HUF16             Format = 95
	FormatBC6HSF16             Format = 96
	FormatBC7Typeless          Format = 97
	FormatBC7Unorm             Format = 98
	FormatBC7UnormSRGB         Format = 99
	FormatAYUV                 Format = 100
	FormatY416                 Format = 102
	FormatNV12                 Format = 103
	FormatP010                 Format = 104
	FormatP016                 Format = 105
	Format420Opaque            Format = 106
	FormatYUY2                 Format = 107
	FormatNV11                 Format = 110
	FormatB4G4R4A4Unorm        Format = 115

	// FormatLegacyB8G8R8 is the 24-bit D3DFMT_R8G8B8 layout (B, G, R byte order).
	FormatLegacyB8G8R8 Format = 0x10000
	// FormatLegacyR8G8B8X8 is D3DFMT_X8B8G8R8 (R, G, B, unused byte order).
	FormatLegacyR8G8B8X8 Format = 0x10001
)

// NumericKind is how the channel bits of a format are interpreted.
type NumericKind uint8

const (
	KindUnknown NumericKind = iota
	KindUNORM
	KindSNORM
	KindUINT
	KindSINT
	KindFloat
	KindTypeless
	KindYUV
	KindSharedExp
	KindDepth
)

// Channels is a bitset of the channels a format stores.
type Channels uint8

const (
	ChannelR Channels = 1 << iota
	ChannelG
	ChannelB
	ChannelA

	ChannelsRGB  = ChannelR | ChannelG | ChannelB
	ChannelsRGBA = ChannelsRGB | ChannelA
)

// FormatInfo describes a Format: channel layout, bit depth, numeric kind, gamma
// and whether it is block-compressed. Exactly one of Compressed and
// "uncompressed packed" holds; planar formats are uncompressed.
type FormatInfo struct {
	Name string
	Kind NumericKind

	// BitsPerPixel is zero for block-compressed formats.
	BitsPerPixel int
	// ChannelBits is the widest channel's bit depth, used for dithering decisions.
	ChannelBits int
	Channels    Channels

	SRGB       bool
	Compressed bool
	BlockBytes int // bytes per 4x4 block when Compressed

	Planar bool
	// PairPacked formats store two horizontally adjacent pixels in one unit.
	PairPacked bool
}

// HasAlpha reports whether the format stores an alpha channel.
func (fi FormatInfo) HasAlpha() bool { return fi.Channels&ChannelA != 0 }

var formatTable = map[Format]FormatInfo{
	FormatR32G32B32A32Typeless: {Name: "R32G32B32A32_TYPELESS", Kind: KindTypeless, BitsPerPixel: 128, ChannelBits: 32, Channels: ChannelsRGBA},
	FormatR32G32B32A32Float:    {Name: "R32G32B32A32_FLOAT", Kind: KindFloat, BitsPerPixel: 128, ChannelBits: 32, Channels: ChannelsRGBA},
	FormatR32G32B32A32Uint:     {Name: "R32G32B32A32_UINT", Kind: KindUINT, BitsPerPixel: 128, ChannelBits: 32, Channels: ChannelsRGBA},
	FormatR32G32B32A32Sint:     {Name: "R32G32B32A32_SINT", Kind: KindSINT, BitsPerPixel: 128, ChannelBits: 32, Channels: ChannelsRGBA},
	FormatR32G32B32Typeless:    {Name: "R32G32B32_TYPELESS", Kind: KindTypeless, BitsPerPixel: 96, ChannelBits: 32, Channels: ChannelsRGB},
	FormatR32G32B32Float:       {Name: "R32G32B32_FLOAT", Kind: KindFloat, BitsPerPixel: 96, ChannelBits: 32, Channels: ChannelsRGB},
	FormatR16G16B16A16Typeless: {Name: "R16G16B16A16_TYPELESS", Kind: KindTypeless, BitsPerPixel: 64, ChannelBits: 16, Channels: ChannelsRGBA},
	FormatR16G16B16A16Float:    {Name: "R16G16B16A16_FLOAT", Kind: KindFloat, BitsPerPixel: 64, ChannelBits: 16, Channels: ChannelsRGBA},
	FormatR16G16B16A16Unorm:    {Name: "R16G16B16A16_UNORM", Kind: KindUNORM, BitsPerPixel: 64, ChannelBits: 16, Channels: ChannelsRGBA},
	FormatR16G16B16A16Uint:     {Name: "R16G16B16A16_UINT", Kind: KindUINT, BitsPerPixel: 64, ChannelBits: 16, Channels: ChannelsRGBA},
	FormatR16G16B16A16Snorm:    {Name: "R16G16B16A16_SNORM", Kind: KindSNORM, BitsPerPixel: 64, ChannelBits: 16, Channels: ChannelsRGBA},
	FormatR32G32Typeless:       {Name: "R32G32_TYPELESS", Kind: KindTypeless, BitsPerPixel: 64, ChannelBits: 32, Channels: ChannelR | ChannelG},
	FormatR32G32Float:          {Name: "R32G32_FLOAT", Kind: KindFloat, BitsPerPixel: 64, ChannelBits: 32, Channels: ChannelR | ChannelG},
	FormatR32G8X24Typeless:     {Name: "R32G8X24_TYPELESS", Kind: KindTypeless, BitsPerPixel: 64, ChannelBits: 32, Channels: ChannelR | ChannelG},
	FormatD32FloatS8X24Uint:    {Name: "D32_FLOAT_S8X24_UINT", Kind: KindDepth, BitsPerPixel: 64, ChannelBits: 32, Channels: ChannelR | ChannelG},
	FormatR10G10B10A2Typeless:  {Name: "R10G10B10A2_TYPELESS", Kind: KindTypeless, BitsPerPixel: 32, ChannelBits: 10, Channels: ChannelsRGBA},
	FormatR10G10B10A2Unorm:     {Name: "R10G10B10A2_UNORM", Kind: KindUNORM, BitsPerPixel: 32, ChannelBits: 10, Channels: ChannelsRGBA},
	FormatR10G10B10A2Uint:      {Name: "R10G10B10A2_UINT", Kind: KindUINT, BitsPerPixel: 32, ChannelBits: 10, Channels: ChannelsRGBA},
	FormatR11G11B10Float:       {Name: "R11G11B10_FLOAT", Kind: KindFloat, BitsPerPixel: 32, ChannelBits: 11, Channels: ChannelsRGB},
	FormatR8G8B8A8Typeless:     {Name: "R8G8B8A8_TYPELESS", Kind: KindTypeless, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGBA},
	FormatR8G8B8A8Unorm:        {Name: "R8G8B8A8_UNORM", Kind: KindUNORM, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGBA},
	FormatR8G8B8A8UnormSRGB:    {Name: "R8G8B8A8_UNORM_SRGB", Kind: KindUNORM, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGBA, SRGB: true},
	FormatR8G8B8A8Uint:         {Name: "R8G8B8A8_UINT", Kind: KindUINT, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGBA},
	FormatR8G8B8A8Snorm:        {Name: "R8G8B8A8_SNORM", Kind: KindSNORM, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGBA},
	FormatR8G8B8A8Sint:         {Name: "R8G8B8A8_SINT", Kind: KindSINT, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGBA},
	FormatR16G16Typeless:       {Name: "R16G16_TYPELESS", Kind: KindTypeless, BitsPerPixel: 32, ChannelBits: 16, Channels: ChannelR | ChannelG},
	FormatR16G16Float:          {Name: "R16G16_FLOAT", Kind: KindFloat, BitsPerPixel: 32, ChannelBits: 16, Channels: ChannelR | ChannelG},
	FormatR16G16Unorm:          {Name: "R16G16_UNORM", Kind: KindUNORM, BitsPerPixel: 32, ChannelBits: 16, Channels: ChannelR | ChannelG},
	FormatR16G16Uint:           {Name: "R16G16_UINT", Kind: KindUINT, BitsPerPixel: 32, ChannelBits: 16, Channels: ChannelR | ChannelG},
	FormatR16G16Snorm:          {Name: "R16G16_SNORM", Kind: KindSNORM, BitsPerPixel: 32, ChannelBits: 16, Channels: ChannelR | ChannelG},
	FormatR32Typeless:          {Name: "R32_TYPELESS", Kind: KindTypeless, BitsPerPixel: 32, ChannelBits: 32, Channels: ChannelR},
	FormatD32Float:             {Name: "D32_FLOAT", Kind: KindDepth, BitsPerPixel: 32, ChannelBits: 32, Channels: ChannelR},
	FormatR32Float:             {Name: "R32_FLOAT", Kind: KindFloat, BitsPerPixel: 32, ChannelBits: 32, Channels: ChannelR},
	FormatR32Uint:              {Name: "R32_UINT", Kind: KindUINT, BitsPerPixel: 32, ChannelBits: 32, Channels: ChannelR},
	FormatR24G8Typeless:        {Name: "R24G8_TYPELESS", Kind: KindTypeless, BitsPerPixel: 32, ChannelBits: 24, Channels: ChannelR | ChannelG},
	FormatD24UnormS8Uint:       {Name: "D24_UNORM_S8_UINT", Kind: KindDepth, BitsPerPixel: 32, ChannelBits: 24, Channels: ChannelR | ChannelG},
	FormatR8G8Typeless:         {Name: "R8G8_TYPELESS", Kind: KindTypeless, BitsPerPixel: 16, ChannelBits: 8, Channels: ChannelR | ChannelG},
	FormatR8G8Unorm:            {Name: "R8G8_UNORM", Kind: KindUNORM, BitsPerPixel: 16, ChannelBits: 8, Channels: ChannelR | ChannelG},
	FormatR8G8Uint:             {Name: "R8G8_UINT", Kind: KindUINT, BitsPerPixel: 16, ChannelBits: 8, Channels: ChannelR | ChannelG},
	FormatR8G8Snorm:            {Name: "R8G8_SNORM", Kind: KindSNORM, BitsPerPixel: 16, ChannelBits: 8, Channels: ChannelR | ChannelG},
	FormatR16Typeless:          {Name: "R16_TYPELESS", Kind: KindTypeless, BitsPerPixel: 16, ChannelBits: 16, Channels: ChannelR},
	FormatR16Float:             {Name: "R16_FLOAT", Kind: KindFloat, BitsPerPixel: 16, ChannelBits: 16, Channels: ChannelR},
	FormatD16Unorm:             {Name: "D16_UNORM", Kind: KindDepth, BitsPerPixel: 16, ChannelBits: 16, Channels: ChannelR},
	FormatR16Unorm:             {Name: "R16_UNORM", Kind: KindUNORM, BitsPerPixel: 16, ChannelBits: 16, Channels: ChannelR},
	FormatR16Uint:              {Name: "R16_UINT", Kind: KindUINT, BitsPerPixel: 16, ChannelBits: 16, Channels: ChannelR},
	FormatR16Snorm:             {Name: "R16_SNORM", Kind: KindSNORM, BitsPerPixel: 16, ChannelBits: 16, Channels: ChannelR},
	FormatR8Typeless:           {Name: "R8_TYPELESS", Kind: KindTypeless, BitsPerPixel: 8, ChannelBits: 8, Channels: ChannelR},
	FormatR8Unorm:              {Name: "R8_UNORM", Kind: KindUNORM, BitsPerPixel: 8, ChannelBits: 8, Channels: ChannelR},
	FormatR8Uint:               {Name: "R8_UINT", Kind: KindUINT, BitsPerPixel: 8, ChannelBits: 8, Channels: ChannelR},
	FormatR8Snorm:              {Name: "R8_SNORM", Kind: KindSNORM, BitsPerPixel: 8, ChannelBits: 8, Channels: ChannelR},
	FormatA8Unorm:              {Name: "A8_UNORM", Kind: KindUNORM, BitsPerPixel: 8, ChannelBits: 8, Channels: ChannelA},
	FormatR9G9B9E5SharedExp:    {Name: "R9G9B9E5_SHAREDEXP", Kind: KindSharedExp, BitsPerPixel: 32, ChannelBits: 9, Channels: ChannelsRGB},
	FormatR8G8B8G8Unorm:        {Name: "R8G8_B8G8_UNORM", Kind: KindUNORM, BitsPerPixel: 16, ChannelBits: 8, Channels: ChannelsRGB, PairPacked: true},
	FormatG8R8G8B8Unorm:        {Name: "G8R8_G8B8_UNORM", Kind: KindUNORM, BitsPerPixel: 16, ChannelBits: 8, Channels: ChannelsRGB, PairPacked: true},

	FormatBC1Typeless:   {Name: "BC1_TYPELESS", Kind: KindTypeless, ChannelBits: 6, Channels: ChannelsRGBA, Compressed: true, BlockBytes: 8},
	FormatBC1Unorm:      {Name: "BC1_UNORM", Kind: KindUNORM, ChannelBits: 6, Channels: ChannelsRGBA, Compressed: true, BlockBytes: 8},
	FormatBC1UnormSRGB:  {Name: "BC1_UNORM_SRGB", Kind: KindUNORM, ChannelBits: 6, Channels: ChannelsRGBA, Compressed: true, BlockBytes: 8, SRGB: true},
	FormatBC2Typeless:   {Name: "BC2_TYPELESS", Kind: KindTypeless, ChannelBits: 6, Channels: ChannelsRGBA, Compressed: true, BlockBytes: 16},
	FormatBC2Unorm:      {Name: "BC2_UNORM", Kind: KindUNORM, ChannelBits: 6, Channels: ChannelsRGBA, Compressed: true, BlockBytes: 16},
	FormatBC2UnormSRGB:  {Name: "BC2_UNORM_SRGB", Kind: KindUNORM, ChannelBits: 6, Channels: ChannelsRGBA, Compressed: true, BlockBytes: 16, SRGB: true},
	FormatBC3Typeless:   {Name: "BC3_TYPELESS", Kind: KindTypeless, ChannelBits: 8, Channels: ChannelsRGBA, Compressed: true, BlockBytes: 16},
	FormatBC3Unorm:      {Name: "BC3_UNORM", Kind: KindUNORM, ChannelBits: 8, Channels: ChannelsRGBA, Compressed: true, BlockBytes: 16},
	FormatBC3UnormSRGB:  {Name: "BC3_UNORM_SRGB", Kind: KindUNORM, ChannelBits: 8, Channels: ChannelsRGBA, Compressed: true, BlockBytes: 16, SRGB: true},
	FormatBC4Typeless:   {Name: "BC4_TYPELESS", Kind: KindTypeless, ChannelBits: 8, Channels: ChannelR, Compressed: true, BlockBytes: 8},
	FormatBC4Unorm:      {Name: "BC4_UNORM", Kind: KindUNORM, ChannelBits: 8, Channels: ChannelR, Compressed: true, BlockBytes: 8},
	FormatBC4Snorm:      {Name: "BC4_SNORM", Kind: KindSNORM, ChannelBits: 8, Channels: ChannelR, Compressed: true, BlockBytes: 8},
	FormatBC5Typeless:   {Name: "BC5_TYPELESS", Kind: KindTypeless, ChannelBits: 8, Channels: ChannelR | ChannelG, Compressed: true, BlockBytes: 16},
	FormatBC5Unorm:      {Name: "BC5_UNORM", Kind: KindUNORM, ChannelBits: 8, Channels: ChannelR | ChannelG, Compressed: true, BlockBytes: 16},
	FormatBC5Snorm:      {Name: "BC5_SNORM", Kind: KindSNORM, ChannelBits: 8, Channels: ChannelR | ChannelG, Compressed: true, BlockBytes: 16},
	FormatBC6HTypeless:  {Name: "BC6H_TYPELESS", Kind: KindTypeless, ChannelBits: 16, Channels: ChannelsRGB, Compressed: true, BlockBytes: 16},
	FormatBC6HUF16:      {Name: "BC6H_UF16", Kind: KindFloat, ChannelBits: 16, Channels: ChannelsRGB, Compressed: true, BlockBytes: 16},
	FormatBC6HSF16:      {Name: "BC6H_SF16", Kind: KindFloat, ChannelBits: 16, Channels: ChannelsRGB, Compressed: true, BlockBytes: 16},
	FormatBC7Typeless:   {Name: "BC7_TYPELESS", Kind: KindTypeless, ChannelBits: 8, Channels: ChannelsRGBA, Compressed: true, BlockBytes: 16},
	FormatBC7Unorm:      {Name: "BC7_UNORM", Kind: KindUNORM, ChannelBits: 8, Channels: ChannelsRGBA, Compressed: true, BlockBytes: 16},
	FormatBC7UnormSRGB:  {Name: "BC7_UNORM_SRGB", Kind: KindUNORM, ChannelBits: 8, Channels: ChannelsRGBA, Compressed: true, BlockBytes: 16, SRGB: true},
	FormatB5G6R5Unorm:   {Name: "B5G6R5_UNORM", Kind: KindUNORM, BitsPerPixel: 16, ChannelBits: 6, Channels: ChannelsRGB},
	FormatB5G5R5A1Unorm: {Name: "B5G5R5A1_UNORM", Kind: KindUNORM, BitsPerPixel: 16, ChannelBits: 5, Channels: ChannelsRGBA},
	FormatB8G8R8A8Unorm: {Name: "B8G8R8A8_UNORM", Kind: KindUNORM, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGBA},
	FormatB8G8R8X8Unorm: {Name: "B8G8R8X8_UNORM", Kind: KindUNORM, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGB},

	FormatB8G8R8A8Typeless:  {Name: "B8G8R8A8_TYPELESS", Kind: KindTypeless, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGBA},
	FormatB8G8R8A8UnormSRGB: {Name: "B8G8R8A8_UNORM_SRGB", Kind: KindUNORM, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGBA, SRGB: true},
	FormatB8G8R8X8Typeless:  {Name: "B8G8R8X8_TYPELESS", Kind: KindTypeless, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGB},
	FormatB8G8R8X8UnormSRGB: {Name: "B8G8R8X8_UNORM_SRGB", Kind: KindUNORM, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGB, SRGB: true},
	FormatB4G4R4A4Unorm:     {Name: "B4G4R4A4_UNORM", Kind: KindUNORM, BitsPerPixel: 16, ChannelBits: 4, Channels: ChannelsRGBA},

	FormatAYUV:      {Name: "AYUV", Kind: KindYUV, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGBA},
	FormatY416:      {Name: "Y416", Kind: KindYUV, BitsPerPixel: 64, ChannelBits: 16, Channels: ChannelsRGBA},
	FormatYUY2:      {Name: "YUY2", Kind: KindYUV, BitsPerPixel: 16, ChannelBits: 8, Channels: ChannelsRGB, PairPacked: true},
	FormatNV12:      {Name: "NV12", Kind: KindYUV, BitsPerPixel: 12, ChannelBits: 8, Channels: ChannelsRGB, Planar: true},
	FormatNV11:      {Name: "NV11", Kind: KindYUV, BitsPerPixel: 12, ChannelBits: 8, Channels: ChannelsRGB, Planar: true},
	FormatP010:      {Name: "P010", Kind: KindYUV, BitsPerPixel: 24, ChannelBits: 16, Channels: ChannelsRGB, Planar: true},
	FormatP016:      {Name: "P016", Kind: KindYUV, BitsPerPixel: 24, ChannelBits: 16, Channels: ChannelsRGB, Planar: true},
	Format420Opaque: {Name: "420_OPAQUE", Kind: KindYUV, BitsPerPixel: 12, ChannelBits: 8, Channels: ChannelsRGB, Planar: true},

	FormatLegacyB8G8R8:   {Name: "B8G8R8", Kind: KindUNORM, BitsPerPixel: 24, ChannelBits: 8, Channels: ChannelsRGB},
	FormatLegacyR8G8B8X8: {Name: "R8G8B8X8", Kind: KindUNORM, BitsPerPixel: 32, ChannelBits: 8, Channels: ChannelsRGB},
}

// Info returns the descriptor for f. The second result is false for unknown formats.
func (f Format) Info() (FormatInfo, bool) {
	fi, ok := formatTable[f]
	return fi, ok
}

func (f Format) String() string {
	if fi, ok := formatTable[f]; ok {
		return fi.Name
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

// IsCompressed reports whether f is a block-compressed format.
func (f Format) IsCompressed() bool { return formatTable[f].Compressed }

// IsTypeless reports whether f carries no numeric interpretation.
func (f Format) IsTypeless() bool { return formatTable[f].Kind == KindTypeless }

// IsSRGB reports whether f stores sRGB-encoded colour.
func (f Format) IsSRGB() bool { return formatTable[f].SRGB }

// IsPlanar reports whether f stores luma and chroma in separate planes.
func (f Format) IsPlanar() bool { return formatTable[f].Planar }

// HasAlpha reports whether f stores an alpha channel.
func (f Format) HasAlpha() bool { return formatTable[f].HasAlpha() }

// IsComputeCapable reports whether f belongs to the high-quality block family
// (BC6H and BC7) that may be encoded on a compute device.
func (f Format) IsComputeCapable() bool {
	switch f {
	case FormatBC6HTypeless, FormatBC6HUF16, FormatBC6HSF16,
		FormatBC7Typeless, FormatBC7Unorm, FormatBC7UnormSRGB:
		return true
	}
	return false
}

var typelessUNORM = map[Format]Format{
	FormatR16G16B16A16Typeless: FormatR16G16B16A16Unorm,
	FormatR10G10B10A2Typeless:  FormatR10G10B10A2Unorm,
	FormatR8G8B8A8Typeless:     FormatR8G8B8A8Unorm,
	FormatR16G16Typeless:       FormatR16G16Unorm,
	FormatR8G8Typeless:         FormatR8G8Unorm,
	FormatR16Typeless:          FormatR16Unorm,
	FormatR8Typeless:           FormatR8Unorm,
	FormatBC1Typeless:          FormatBC1Unorm,
	FormatBC2Typeless:          FormatBC2Unorm,
	FormatBC3Typeless:          FormatBC3Unorm,
	FormatBC4Typeless:          FormatBC4Unorm,
	FormatBC5Typeless:          FormatBC5Unorm,
	FormatB8G8R8A8Typeless:     FormatB8G8R8A8Unorm,
	FormatB8G8R8X8Typeless:     FormatB8G8R8X8Unorm,
	FormatBC7Typeless:          FormatBC7Unorm,
}

// MakeTypelessUNORM maps a typeless format to its UNORM equivalent. Formats
// that are not typeless are returned unchanged with ok == true.
func MakeTypelessUNORM(f Format) (Format, bool) {
	if !f.IsTypeless() {
		return f, true
	}
	u, ok := typelessUNORM[f]
	return u, ok
}

var srgbPairs = map[Format]Format{
	FormatR8G8B8A8Unorm: FormatR8G8B8A8UnormSRGB,
	FormatBC1Unorm:      FormatBC1UnormSRGB,
	FormatBC2Unorm:      FormatBC2UnormSRGB,
	FormatBC3Unorm:      FormatBC3UnormSRGB,
	FormatB8G8R8A8Unorm: FormatB8G8R8A8UnormSRGB,
	FormatB8G8R8X8Unorm: FormatB8G8R8X8UnormSRGB,
	FormatBC7Unorm:      FormatBC7UnormSRGB,
}

// MakeSRGB returns the sRGB variant of f, or f when it has none.
func MakeSRGB(f Format) Format {
	if s, ok := srgbPairs[f]; ok {
		return s
	}
	return f
}

// MakeLinear returns the non-sRGB variant of f, or f when it is not sRGB.
func MakeLinear(f Format) Format {
	for lin, s := range srgbPairs {
		if s == f {
			return lin
		}
	}
	return f
}

// rowPitch returns the bytes per row (or per block row for compressed
// formats) and the number of rows for a width x height surface.
func rowPitch(f Format, width, height int) (pitch, rows int, err error) {
	fi, ok := f.Info()
	if !ok {
		return 0, 0, newErrorf(ErrUnsupportedFormat, "dds: unknown format %v", f)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, newError(ErrInvalidArgument, "dds: invalid surface dimensions")
	}
	switch {
	case fi.Compressed:
		bw := (width + 3) / 4
		bh := (height + 3) / 4
		pitch = bw * fi.BlockBytes
		rows = bh
	case fi.PairPacked:
		pitch = ((width + 1) >> 1) * 4
		rows = height
	case fi.Planar:
		// Luma plane rows plus the interleaved chroma plane rows.
		bpe := 1
		if fi.ChannelBits > 8 {
			bpe = 2
		}
		pitch = width * bpe
		if f == FormatNV11 {
			pitch = ((width + 3) / 4) * 4 * bpe
			rows = height * 2
		} else {
			pitch = ((width + 1) >> 1) * 2 * bpe
			rows = height + (height+1)>>1
		}
	default:
		pitch = (width*fi.BitsPerPixel + 7) / 8
		rows = height
	}
	if pitch <= 0 || rows <= 0 || pitch > maxSurfaceBytes/rows {
		return 0, 0, newError(ErrOutOfMemory, "dds: surface size overflow")
	}
	return pitch, rows, nil
}

// maxSurfaceBytes bounds a single slice allocation.
const maxSurfaceBytes = 1 << 31
