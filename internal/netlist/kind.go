package netlist

import "fmt"

// Kind identifies what an instance is: a hierarchical instantiation of a
// user scope (KindUser), a built-in single-bit primitive, a wide operator,
// or a temporal-assertion primitive. The enumeration is closed; the
// front-end never produces anything outside it.
type Kind int

const (
	// KindUser marks a hierarchical instance of a user-defined scope.
	KindUser Kind = iota

	// Single-bit primitives.
	KindAnd
	KindNand
	KindOr
	KindNor
	KindXor
	KindXnor
	KindBuf
	KindInv
	KindMux
	KindTri
	KindFadd
	KindDffrs
	KindDlatchrs
	KindPwr
	KindGnd
	KindX
	KindZ
	KindHdlAssertion

	// Wide operators. Operators carry bit-sliced ports (Input1Bits etc.)
	// and a signedness flag on the instance.
	operFirst
	KindAdder
	KindMultiplier
	KindDivider
	KindModulo
	KindRemainder
	KindShiftLeft
	KindShiftRight
	KindDecoder
	KindEnabledDecoder
	KindReduceAnd
	KindReduceOr
	KindReduceXor
	KindReduceXnor
	KindLessThan
	KindWideAnd
	KindWideOr
	KindWideXor
	KindWideXnor
	KindWideBuf
	KindWideInv
	KindMinus
	KindUminus
	KindEqual
	KindNequal
	KindWideMux
	KindWideTri
	KindWideDffrs
	KindReadPort
	KindWritePort
	KindClockedWritePort
	KindPrev
	operLast

	// SVA temporal primitives.
	svaFirst
	KindImmediateAssert
	KindImmediateAssume
	KindImmediateCover
	KindSvaAssert
	KindSvaAssume
	KindSvaCover
	KindSvaPosedge
	KindSvaAt
	KindSvaDisableIff
	KindSvaPast
	KindSvaOverlappedImpl
	KindSvaNonOverlappedImpl
	KindSvaSeqConcat
	KindSvaConsecutiveRepeat
	KindSvaNonConsecutiveRepeat
	KindSvaGotoRepeat
	KindSvaFirstMatch
	KindSvaThroughout
	KindSvaWithin
	KindSvaIntersect
	KindSvaNot
	KindSvaAnd
	KindSvaOr
	KindSvaSeqAnd
	KindSvaSeqOr
	KindSvaIf
	KindSvaAlways
	KindSvaEventually
	KindSvaNexttime
	KindSvaUntil
	KindSvaSampled
	KindSvaRose
	KindSvaFell
	KindSvaStable
	svaLast

	// PSL temporal primitives.
	pslFirst
	KindPslAssert
	KindPslAssume
	KindPslCover
	KindPslAlways
	KindPslNever
	KindPslImpl
	KindPslSuffixImpl
	KindPslAbort
	KindPslAt
	KindPslNext
	KindPslUntil
	KindPslBefore
	KindPslEventually
	pslLast
)

// IsOperator reports whether the kind is a wide operator.
func (k Kind) IsOperator() bool { return k > operFirst && k < operLast }

// IsPrimitive reports whether the kind is any built-in (non-hierarchical)
// instance kind.
func (k Kind) IsPrimitive() bool { return k != KindUser }

// IsTemporal reports whether the kind belongs to the SVA or PSL
// temporal-assertion primitive sets. KindPrev is included: it is the
// PSL previous-value operator and must not be treated as an ordinary
// unsupported operator.
func (k Kind) IsTemporal() bool {
	if k > svaFirst && k < svaLast {
		return true
	}
	if k > pslFirst && k < pslLast {
		return true
	}
	return k == KindPrev
}

var kindNames = map[Kind]string{
	KindUser:                    "user",
	KindAnd:                     "and",
	KindNand:                    "nand",
	KindOr:                      "or",
	KindNor:                     "nor",
	KindXor:                     "xor",
	KindXnor:                    "xnor",
	KindBuf:                     "buf",
	KindInv:                     "inv",
	KindMux:                     "mux",
	KindTri:                     "tri",
	KindFadd:                    "fadd",
	KindDffrs:                   "dffrs",
	KindDlatchrs:                "dlatchrs",
	KindPwr:                     "pwr",
	KindGnd:                     "gnd",
	KindX:                       "x",
	KindZ:                       "z",
	KindHdlAssertion:            "hdl_assertion",
	KindAdder:                   "adder",
	KindMultiplier:              "multiplier",
	KindDivider:                 "divider",
	KindModulo:                  "modulo",
	KindRemainder:               "remainder",
	KindShiftLeft:               "shift_left",
	KindShiftRight:              "shift_right",
	KindDecoder:                 "decoder",
	KindEnabledDecoder:          "enabled_decoder",
	KindReduceAnd:               "reduce_and",
	KindReduceOr:                "reduce_or",
	KindReduceXor:               "reduce_xor",
	KindReduceXnor:              "reduce_xnor",
	KindLessThan:                "less_than",
	KindWideAnd:                 "wide_and",
	KindWideOr:                  "wide_or",
	KindWideXor:                 "wide_xor",
	KindWideXnor:                "wide_xnor",
	KindWideBuf:                 "wide_buf",
	KindWideInv:                 "wide_inv",
	KindMinus:                   "minus",
	KindUminus:                  "uminus",
	KindEqual:                   "equal",
	KindNequal:                  "nequal",
	KindWideMux:                 "wide_mux",
	KindWideTri:                 "wide_tri",
	KindWideDffrs:               "wide_dffrs",
	KindReadPort:                "read_port",
	KindWritePort:               "write_port",
	KindClockedWritePort:        "clocked_write_port",
	KindPrev:                    "prev",
	KindImmediateAssert:         "immediate_assert",
	KindImmediateAssume:         "immediate_assume",
	KindImmediateCover:          "immediate_cover",
	KindSvaAssert:               "sva_assert",
	KindSvaAssume:               "sva_assume",
	KindSvaCover:                "sva_cover",
	KindSvaPosedge:              "sva_posedge",
	KindSvaAt:                   "sva_at",
	KindSvaDisableIff:           "sva_disable_iff",
	KindSvaPast:                 "sva_past",
	KindSvaOverlappedImpl:       "sva_overlapped_impl",
	KindSvaNonOverlappedImpl:    "sva_non_overlapped_impl",
	KindSvaSeqConcat:            "sva_seq_concat",
	KindSvaConsecutiveRepeat:    "sva_consecutive_repeat",
	KindSvaNonConsecutiveRepeat: "sva_non_consecutive_repeat",
	KindSvaGotoRepeat:           "sva_goto_repeat",
	KindSvaFirstMatch:           "sva_first_match",
	KindSvaThroughout:           "sva_throughout",
	KindSvaWithin:               "sva_within",
	KindSvaIntersect:            "sva_intersect",
	KindSvaNot:                  "sva_not",
	KindSvaAnd:                  "sva_and",
	KindSvaOr:                   "sva_or",
	KindSvaSeqAnd:               "sva_seq_and",
	KindSvaSeqOr:                "sva_seq_or",
	KindSvaIf:                   "sva_if",
	KindSvaAlways:               "sva_always",
	KindSvaEventually:           "sva_eventually",
	KindSvaNexttime:             "sva_nexttime",
	KindSvaUntil:                "sva_until",
	KindSvaSampled:              "sva_sampled",
	KindSvaRose:                 "sva_rose",
	KindSvaFell:                 "sva_fell",
	KindSvaStable:               "sva_stable",
	KindPslAssert:               "psl_assert",
	KindPslAssume:               "psl_assume",
	KindPslCover:                "psl_cover",
	KindPslAlways:               "psl_always",
	KindPslNever:                "psl_never",
	KindPslImpl:                 "psl_impl",
	KindPslSuffixImpl:           "psl_suffix_impl",
	KindPslAbort:                "psl_abort",
	KindPslAt:                   "psl_at",
	KindPslNext:                 "psl_next",
	KindPslUntil:                "psl_until",
	KindPslBefore:               "psl_before",
	KindPslEventually:           "psl_eventually",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps the serialized kind name used in netlist JSON files back
// to the enum value.
func ParseKind(name string) (Kind, error) {
	k, ok := kindByName[name]
	if !ok {
		return KindUser, fmt.Errorf("unknown instance kind %q", name)
	}
	return k, nil
}
