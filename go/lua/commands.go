package lua

var cmdRc = `
func _is_public(name)
    return _builtins[name] != true and name:sub(1, 1) != '_'
end

func help()
    local funcs = {}
    local vars = {}
    local vkeys = {}
    for name, val in pairs(_G) do
        if _is_public(name) then
            if type(val) == 'function' then
                table.insert(funcs, name)
            else
                vars[name] = val
                table.insert(vkeys, name)
            end
        end
    end
    table.sort(funcs)
    print('Functions:')
    for _, name in ipairs(funcs) do
        print(name)
    end
    print()

    table.sort(vkeys)
    print('Variables:')
    for _, name in ipairs(vkeys) do
        print(name, '=', vars[name])
    end
end

func dir()
    local ret = {}
    for name, _ in pairs(_G) do
        if _is_public(name) then
            table.insert(ret, name)
        end
    end
    table.sort(ret)
    return ret
end

func arches()
    for i, desc in ipairs(bin.arches()) do
        local mark = ' '
        if i - 1 == arch then mark = '*' end
        print('%s %d: %s' % {mark, i - 1, desc})
    end
end

func use(i)
    bin.select(i)
end

func info() bin.report('info') end
func commands() bin.report('commands') end
func segments() bin.report('segments') end
func sections() bin.report('sections') end
func dylibs() bin.report('dylibs') end
func stubs() bin.report('stubs') end

func symbols(f) bin.report('symbols', f) end
func indirect(f) bin.report('indirect', f) end

func strings(t)
    if t == nil then t = sect.cstring end
    bin.report('strings', t)
end

func hexdump(t, off, n)
    if t == nil then t = sect.program end
    if n == nil then n = 256 end
    bin.report('hexdump', t, off, n)
end

func dis(addr, count)
    for _, ins in ipairs(bin.dis(addr, count)) do
        print('0x%x: %s %s' % {ins.addr, ins.name, ins.op_str})
    end
end

func find(name)
    local ret = {}
    for _, s in ipairs(bin.symbols(name)) do
        ret[s.name] = s.value
    end
    for _, s in ipairs(bin.indirect(name)) do
        if s.value != 0 then ret[s.name] = s.value end
    end
    return ret
end
`
