package access

import (
	"errors"
	"fmt"
)

// Section identifies an application area that permissions are granted on.
// The set is closed: values outside the constants below never come out of
// ParseSection or UnmarshalText.
type Section uint8

const (
	Dashboard Section = iota + 1
	Clientes
	Projetos
	Kanban
	Agenda
	Atendimento
	Arquivos
	Email
	Configuracoes
)

// ErrInvalidSection is returned when a section key is not part of the enumeration.
var ErrInvalidSection = errors.New("access: invalid section")

var sectionKeys = [...]string{
	Dashboard:     "dashboard",
	Clientes:      "clientes",
	Projetos:      "projetos",
	Kanban:        "kanban",
	Agenda:        "agenda",
	Atendimento:   "atendimento",
	Arquivos:      "arquivos",
	Email:         "email",
	Configuracoes: "configuracoes",
}

// Sections returns every known section in navigation order.
func Sections() []Section {
	out := make([]Section, 0, len(sectionKeys)-1)
	for s := Dashboard; s <= Configuracoes; s++ {
		out = append(out, s)
	}
	return out
}

// Valid reports whether s is one of the enumerated sections.
func (s Section) Valid() bool {
	return s >= Dashboard && s <= Configuracoes
}

// Key returns the stable string key stored in the database and sent over the wire.
func (s Section) Key() string {
	if !s.Valid() {
		return ""
	}
	return sectionKeys[s]
}

func (s Section) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Section(%d)", uint8(s))
	}
	return sectionKeys[s]
}

// ParseSection maps a section key to its Section.
func ParseSection(key string) (Section, error) {
	for s := Dashboard; s <= Configuracoes; s++ {
		if sectionKeys[s] == key {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSection, key)
}

func (s Section) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, ErrInvalidSection
	}
	return []byte(sectionKeys[s]), nil
}

func (s *Section) UnmarshalText(b []byte) error {
	parsed, err := ParseSection(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
