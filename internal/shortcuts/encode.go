package shortcuts

import (
	"bytes"
	"path/filepath"
	"strconv"
)

const (
	typeMap byte = 0x00
	typeEnd byte = 0x08

	maxFieldLen = 255
)

// Encode writes list as a shortcut blob using length-prefixed string fields,
// the layout Parse decodes first. Values longer than 255 bytes are cut.
func Encode(list []Shortcut) []byte {
	var buf bytes.Buffer

	writeKey(&buf, typeMap, "shortcuts")
	for i, sc := range list {
		writeKey(&buf, typeMap, strconv.Itoa(i))
		writeString(&buf, nameField, sc.Name)
		writeString(&buf, exeField, sc.Exe)
		writeString(&buf, "StartDir", filepath.Dir(sc.Exe))
		buf.WriteByte(typeEnd)
	}
	buf.WriteByte(typeEnd)
	buf.WriteByte(typeEnd)

	return buf.Bytes()
}

func writeKey(buf *bytes.Buffer, typ byte, name string) {
	buf.WriteByte(typ)
	buf.WriteString(name)
	buf.WriteByte(terminator)
}

func writeString(buf *bytes.Buffer, field, value string) {
	if len(value) > maxFieldLen {
		value = value[:maxFieldLen]
	}

	writeKey(buf, typeString, field)
	buf.WriteByte(byte(len(value)))
	buf.WriteString(value)
}
