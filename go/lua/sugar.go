package lua

// builtinsRc runs before anything else is defined so help() can tell the
// stock globals from ours.
var builtinsRc = `
_builtins = {}
for name, _ in pairs(_G) do
    _builtins[name] = true
end
`

var sugarRc = `
getmetatable("").__mod = func(a, b)
    if type(b) == 'table' then
        return string.format(a, unpack(b))
    end
    return string.format(a, b)
end

func hex(s) return '%x' % s end
func ord(s) return string.byte(s, 1) end
func chr(s) return string.char(s) end

func range(a, b, c)
    local i, stop, step = 0, a, 1
    if b != nil then
        if c != nil then step = c end
        i, stop = a, b
    end
    i = i - 1
    return func()
        i = i + step
        if (step > 0 and i < stop) or (step < 0 and i > stop) then
            return i
        end
    end
end

func filter(t, fn)
    local ret = {}
    for _, v in ipairs(t) do
        if fn(v) then table.insert(ret, v) end
    end
    return ret
end

func count(t)
    local n = 0
    for _ in pairs(t) do n = n + 1 end
    return n
end
`
