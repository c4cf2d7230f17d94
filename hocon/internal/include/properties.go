package include

import (
	"bufio"
	"bytes"
	"strings"

	"go.jacobcolvin.com/hocon/internal/raw"
)

// decodeProperties parses data as a Java .properties file and lifts it
// into a raw.Value object, one field per entry, dotted keys left intact
// so the usual dotted-key expansion in the lowering pass nests them
// (spec.md §4.6.3).
func decodeProperties(data []byte) (*raw.Value, error) {
	var fields []raw.ObjectField

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var pending string

	for scanner.Scan() {
		line := scanner.Text()

		if pending != "" {
			line = pending + strings.TrimLeft(line, " \t")
			pending = ""
		}

		if strings.HasSuffix(line, `\`) && !strings.HasSuffix(line, `\\`) {
			pending = strings.TrimSuffix(line, `\`)

			continue
		}

		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || trimmed[0] == '#' || trimmed[0] == '!' {
			continue
		}

		key, value := splitPropertiesEntry(trimmed)
		if key == "" {
			continue
		}

		fields = append(fields, raw.ObjectField{
			Key:   strings.Split(key, "."),
			Value: raw.NewString(raw.Position{}, unescapeProperties(value), raw.StringQuoted),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return raw.NewObject(raw.Position{}, fields), nil
}

// splitPropertiesEntry finds the first unescaped '=', ':', or run of
// whitespace separating key from value, per the .properties grammar.
func splitPropertiesEntry(line string) (key, value string) {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '=', ':':
			return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
		case ' ', '\t':
			return strings.TrimSpace(line[:i]), strings.TrimSpace(trimOneSeparator(line[i:]))
		}
	}

	return strings.TrimSpace(line), ""
}

func trimOneSeparator(s string) string {
	s = strings.TrimLeft(s, " \t")
	if len(s) > 0 && (s[0] == '=' || s[0] == ':') {
		s = s[1:]
	}

	return s
}

func unescapeProperties(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			sb.WriteByte(s[i])

			continue
		}

		i++

		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(s[i])
		}
	}

	return sb.String()
}
