package lua

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lunixbochs/fvbommel-util/sortorder"
	"github.com/lunixbochs/luaish"

	"github.com/lunixbochs/binspect/go/models"
)

type tableField struct {
	key string
	val lua.LValue
}

func (L *LuaRepl) prettydump(lv []lua.LValue, implicit bool, outer bool, seen map[lua.LValue]bool) []string {
	pretty := make([]string, len(lv))
	for i, v := range lv {
		switch s := v.(type) {
		case *lua.LTable:
			// seen[v] skips recursive table references
			if seen[v] {
				pretty[i] = "{\"<skipped recursion>\"}"
				continue
			}
			seen[v] = true

			var list []string
			var fields []tableField
			idx := 1
			s.ForEach(func(k, v lua.LValue) {
				if n, ok := k.(lua.LInt); ok && int(n) == idx {
					idx++
					list = append(list, L.prettydump([]lua.LValue{v}, implicit, false, seen)[0])
					return
				}
				key := L.prettydump([]lua.LValue{k}, false, false, seen)[0]
				fields = append(fields, tableField{key, v})
			})
			// hash order is random, keep dumps stable
			sort.Slice(fields, func(i, j int) bool { return sortorder.NaturalLess(fields[i].key, fields[j].key) })
			for _, f := range fields {
				list = append(list, f.key+" = "+L.prettydump([]lua.LValue{f.val}, implicit, false, seen)[0])
			}

			seen[v] = false
			if outer {
				pretty[i] = "{" + strings.Join(list, ",\n ") + "}"
			} else {
				pretty[i] = "{" + strings.Join(list, ", ") + "}"
			}
		case lua.LFloat:
			pretty[i] = fmt.Sprintf("%f", float64(s))
		case lua.LInt:
			n := uint64(s)
			if n < 10 {
				pretty[i] = fmt.Sprintf("%d", n)
			} else if n > 0x10000 {
				pretty[i] = fmt.Sprintf("%#x", n)
			} else {
				pretty[i] = fmt.Sprintf("%#x(%d)", n, n)
			}
		case lua.LString:
			if implicit {
				pretty[i] = models.Repr([]byte(s), L.config.Strsize)
			} else {
				pretty[i] = string(s)
			}
		default:
			pretty[i] = fmt.Sprintf("%s", s)
		}
	}
	return pretty
}

func (L *LuaRepl) PrettyDump(lv []lua.LValue, implicit bool, outer bool) []string {
	return L.prettydump(lv, implicit, outer, make(map[lua.LValue]bool))
}

func (L *LuaRepl) PrettyPrint(lv []lua.LValue, implicit bool) {
	pretty := L.PrettyDump(lv, implicit, true)
	L.Printf("%s\n", strings.Join(pretty, " "))
}
