package symtab

import (
	"debug/dwarf"
	"debug/elf"
	"fmt"
	"sync"
)

// DWARFData resolves addresses through the debug information of a loaded
// image: the line table gives the innermost position, and the
// inlined-subroutine tree expands an address into its logical call
// chain. Lookups are serialized internally.
type DWARFData struct {
	mu   sync.Mutex
	data *dwarf.Data
	// bias is the image's loaded address minus its link-time address.
	bias   uintptr
	native bool
}

var _ Provider = (*DWARFData)(nil)

// NewDWARFData wraps already-parsed debug information. native marks the
// image as host code.
func NewDWARFData(data *dwarf.Data, bias uintptr, native bool) *DWARFData {
	return &DWARFData{data: data, bias: bias, native: native}
}

// LoadELF reads the debug information of the ELF image at path. bias is
// the image's loaded address minus its link-time address.
func LoadELF(path string, bias uintptr, native bool) (*DWARFData, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()
	data, err := f.DWARF()
	if err != nil {
		return nil, fmt.Errorf("failed to read debug info from %s: %w", path, err)
	}
	return NewDWARFData(data, bias, native), nil
}

// Lookup implements Provider.
func (d *DWARFData) Lookup(addr uintptr) ([]FuncInfo, bool) {
	pc := uint64(addr - d.bias)
	d.mu.Lock()
	defer d.mu.Unlock()

	r := d.data.Reader()
	cu, err := r.SeekPC(pc)
	if err != nil || cu == nil {
		return nil, false
	}

	var files []*dwarf.LineFile
	var lineFile string
	lineLine := -1
	if lr, err := d.data.LineReader(cu); err == nil && lr != nil {
		files = lr.Files()
		var le dwarf.LineEntry
		if err := lr.SeekPC(pc, &le); err == nil && le.File != nil {
			lineFile, lineLine = le.File.Name, le.Line
		}
	}

	sub, inlines := d.chainAt(r, pc)
	if sub == nil {
		return nil, false
	}
	subFile := d.fileAt(files, sub, dwarf.AttrDeclFile)
	if subFile == "" {
		if s, ok := cu.Val(dwarf.AttrName).(string); ok {
			subFile = s
		}
	}

	// Walk the inline chain inside out. Each frame's position is the
	// position inside that frame: the line table's view for the
	// innermost one, then the call site recorded on each inlined entry.
	infos := make([]FuncInfo, 0, len(inlines)+1)
	curFile, curLine := lineFile, lineLine
	for i := len(inlines) - 1; i >= 0; i-- {
		e := inlines[i]
		infos = append(infos, FuncInfo{
			Name:    d.nameOf(e, 0),
			File:    curFile,
			Line:    curLine,
			Native:  d.native,
			Inlined: true,
		})
		curFile = d.fileAt(files, e, dwarf.AttrCallFile)
		curLine = intAttr(e, dwarf.AttrCallLine, -1)
	}
	if curFile == "" {
		curFile = subFile
	}
	infos = append(infos, FuncInfo{
		Name:   d.nameOf(sub, 0),
		File:   curFile,
		Line:   curLine,
		Native: d.native,
	})
	return infos, true
}

// chainAt scans the compilation unit the reader is positioned in for the
// subprogram covering pc and the inlined subroutines nested around it.
// Inlines come back in document order, outermost first.
func (d *DWARFData) chainAt(r *dwarf.Reader, pc uint64) (sub *dwarf.Entry, inlines []*dwarf.Entry) {
	depth := 0
	subDepth := -1
	for {
		e, err := r.Next()
		if err != nil || e == nil {
			return
		}
		if e.Tag == 0 {
			depth--
			if depth < 0 {
				return
			}
			if sub != nil && depth <= subDepth {
				return
			}
			continue
		}
		switch e.Tag {
		case dwarf.TagCompileUnit:
			return
		case dwarf.TagSubprogram:
			if sub != nil || !d.covers(e, pc) {
				if e.Children {
					r.SkipChildren()
				}
				continue
			}
			sub = e
			subDepth = depth
		case dwarf.TagInlinedSubroutine:
			if sub == nil || !d.covers(e, pc) {
				if e.Children {
					r.SkipChildren()
				}
				continue
			}
			inlines = append(inlines, e)
		}
		if e.Children {
			depth++
		}
	}
}

func (d *DWARFData) covers(e *dwarf.Entry, pc uint64) bool {
	ranges, err := d.data.Ranges(e)
	if err != nil {
		return false
	}
	for _, r := range ranges {
		if pc >= r[0] && pc < r[1] {
			return true
		}
	}
	return false
}

// nameOf resolves an entry's name, following abstract-origin and
// specification references for entries that carry their identity
// elsewhere.
func (d *DWARFData) nameOf(e *dwarf.Entry, hops int) string {
	if s, ok := e.Val(dwarf.AttrName).(string); ok {
		return s
	}
	if hops >= 2 {
		return ""
	}
	for _, attr := range []dwarf.Attr{dwarf.AttrAbstractOrigin, dwarf.AttrSpecification} {
		off, ok := e.Val(attr).(dwarf.Offset)
		if !ok {
			continue
		}
		r := d.data.Reader()
		r.Seek(off)
		ref, err := r.Next()
		if err != nil || ref == nil {
			continue
		}
		if s := d.nameOf(ref, hops+1); s != "" {
			return s
		}
	}
	return ""
}

func (d *DWARFData) fileAt(files []*dwarf.LineFile, e *dwarf.Entry, attr dwarf.Attr) string {
	idx, ok := e.Val(attr).(int64)
	if !ok || idx < 0 || int(idx) >= len(files) || files[idx] == nil {
		return ""
	}
	return files[idx].Name
}

func intAttr(e *dwarf.Entry, attr dwarf.Attr, def int) int {
	v, ok := e.Val(attr).(int64)
	if !ok {
		return def
	}
	return int(v)
}
