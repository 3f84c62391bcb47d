package vm

// io.go implements the two SVC trap handlers: SYS_IN reads one line from the machine's input
// stream, SYS_OUT writes a counted run of bytes to its output stream. Both addresses and byte
// counts are conveyed through GR1/GR2, never through the SVC operand itself.

const maxLineLength = 256

// svcIn services SVC SYS_IN. GR1 points to a buffer; GR2 points to a length word. It reads one
// line from Stdin, truncates it to maxLineLength bytes, writes the resulting length at GR2, and
// the bytes (one per word, zero-extended) starting at GR1.
func (m *Machine) svcIn() {
	bufAddr := m.GR[GR1]
	lenAddr := m.GR[GR2]

	line, _ := m.in.ReadString('\n')

	for len(line) > 0 {
		last := line[len(line)-1]
		if last == '\n' || last == '\r' {
			line = line[:len(line)-1]
			continue
		}
		break
	}

	if len(line) > maxLineLength {
		line = line[:maxLineLength]
	}

	m.Mem.Store(lenAddr, Word(len(line)))

	for i := 0; i < len(line); i++ {
		m.Mem.Store(bufAddr+Word(i), Word(line[i]))
	}
}

// svcOut services SVC SYS_OUT. GR1 points to bytes; GR2 points to a length word holding the
// count. It writes that many low-byte characters to Stdout, followed by a newline.
func (m *Machine) svcOut() {
	bufAddr := m.GR[GR1]
	lenAddr := m.GR[GR2]

	n := m.Mem.Load(lenAddr)

	buf := make([]byte, 0, n+1)
	for i := Word(0); i < n; i++ {
		buf = append(buf, byte(m.Mem.Load(bufAddr+i)))
	}
	buf = append(buf, '\n')

	_, _ = m.Stdout.Write(buf)
}
