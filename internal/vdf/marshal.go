package vdf

import (
	"bytes"
	"strings"
)

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Marshal renders n in the tab-indented quoted layout written by the Steam client.
// The root node's children are written as top-level entries.
func Marshal(n *Node) []byte {
	var buf bytes.Buffer
	writeBlock(&buf, n, 0)
	return buf.Bytes()
}

func writeBlock(buf *bytes.Buffer, n *Node, depth int) {
	indent := strings.Repeat("\t", depth)
	for _, key := range n.keys {
		child := n.children[key]

		buf.WriteString(indent)
		writeQuoted(buf, key)

		if child.leaf {
			buf.WriteString("\t\t")
			writeQuoted(buf, child.value)
			buf.WriteByte('\n')
			continue
		}

		buf.WriteByte('\n')
		buf.WriteString(indent)
		buf.WriteString("{\n")
		writeBlock(buf, child, depth+1)
		buf.WriteString(indent)
		buf.WriteString("}\n")
	}
}

func writeQuoted(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	buf.WriteString(escaper.Replace(s))
	buf.WriteByte('"')
}
