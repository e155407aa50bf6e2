package loader

import "github.com/lunixbochs/binspect/go/models"

// Values from mach/machine.h. 64-bit cpu types add the ABI64 bit; x86
// subtypes pack a family in the low nibble and a model in the next one.
const (
	cpuArchABI64   = 0x01000000
	cpuSubtypeMask = 0xff000000

	cpuTypeX86     = 7
	cpuTypeHPPA    = 11
	cpuTypeARM     = 12
	cpuTypeSPARC   = 14
	cpuTypeI860    = 15
	cpuTypePowerPC = 18
)

func intelSubtype(family, model uint32) uint32 {
	return family + model<<4
}

var cpuTypeMap = map[uint32]models.CpuType{
	cpuTypeX86:                    models.CpuX86,
	cpuTypeX86 | cpuArchABI64:     models.CpuX86_64,
	cpuTypeHPPA:                   models.CpuHPPA,
	cpuTypeARM:                    models.CpuARM,
	cpuTypeARM | cpuArchABI64:     models.CpuARM64,
	cpuTypeSPARC:                  models.CpuSPARC,
	cpuTypeI860:                   models.CpuI860,
	cpuTypePowerPC:                models.CpuPowerPC,
	cpuTypePowerPC | cpuArchABI64: models.CpuPowerPC64,
}

var cpuSubTypeMap = map[uint32]models.CpuSubType{
	intelSubtype(3, 0):  models.SubI386,
	intelSubtype(4, 0):  models.SubI486,
	intelSubtype(4, 8):  models.SubI486SX,
	intelSubtype(5, 0):  models.SubPentium,
	intelSubtype(6, 1):  models.SubPentiumPro,
	intelSubtype(6, 3):  models.SubPentiumIIM3,
	intelSubtype(6, 5):  models.SubPentiumIIM5,
	intelSubtype(7, 6):  models.SubCeleron,
	intelSubtype(7, 7):  models.SubCeleronMobile,
	intelSubtype(8, 0):  models.SubPentium3,
	intelSubtype(8, 1):  models.SubPentium3M,
	intelSubtype(8, 2):  models.SubPentium3Xeon,
	intelSubtype(9, 0):  models.SubPentiumM,
	intelSubtype(10, 0): models.SubPentium4,
	intelSubtype(10, 1): models.SubPentium4M,
	intelSubtype(11, 0): models.SubItanium,
	intelSubtype(11, 1): models.SubItanium2,
	intelSubtype(12, 0): models.SubXeon,
	intelSubtype(12, 1): models.SubXeonMP,
}

var fileTypeMap = map[uint32]models.FileType{
	1: models.FileObject,
	2: models.FileExecute,
	4: models.FileCore,
	5: models.FilePreload,
	6: models.FileDylib,
	7: models.FileDylinker,
	8: models.FileBundle,
}

func mapCpuType(raw uint32) models.CpuType {
	if t, ok := cpuTypeMap[raw]; ok {
		return t
	}
	return models.CpuX86
}

// mapCpuSubType drops the capability bits (including the 64-bit library
// flag) before the lookup.
func mapCpuSubType(raw uint32) models.CpuSubType {
	if t, ok := cpuSubTypeMap[raw&^cpuSubtypeMask]; ok {
		return t
	}
	return models.SubI386
}

func mapFileType(raw uint32) models.FileType {
	if t, ok := fileTypeMap[raw]; ok {
		return t
	}
	return models.FileObject
}
