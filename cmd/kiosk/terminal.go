package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"kioskreg/internal/kiosk/wizard"
	v1 "kioskreg/pkg/api/registrations/v1"
)

// terminal проводит посетителя по экранам мастера через текстовый ввод.
type terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

func newTerminal(in io.Reader, out io.Writer) *terminal {
	return &terminal{in: bufio.NewScanner(in), out: out}
}

func (t *terminal) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format, args...)
}

// readLine возвращает io.EOF, когда ввод закончился.
func (t *terminal) readLine(prompt string) (string, error) {
	t.printf("%s: ", prompt)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(t.in.Text()), nil
}

// choose показывает варианты и возвращает выбранный. Пустой ввод допустим, если allowEmpty.
func (t *terminal) choose(prompt string, options []string, allowEmpty bool) (string, error) {
	for i, option := range options {
		t.printf("  %d) %s\n", i+1, option)
	}
	for {
		line, err := t.readLine(prompt)
		if err != nil {
			return "", err
		}
		if line == "" && allowEmpty {
			return "", nil
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
	}
}

func (t *terminal) run(ctx context.Context, s *wizard.Session) error {
	for ctx.Err() == nil {
		if err := t.cycle(ctx, s); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// cycle проходит мастер от стартового экрана до возврата на него.
func (t *terminal) cycle(ctx context.Context, s *wizard.Session) error {
	if _, err := t.readLine("Toca para comenzar (Enter)"); err != nil {
		return err
	}
	if err := s.Advance(ctx); err != nil {
		return err
	}
	t.printf("¡Bienvenido!\n")
	if _, err := t.readLine("Registrarme (Enter)"); err != nil {
		return err
	}
	if err := s.Advance(ctx); err != nil {
		return err
	}

	if err := t.form(ctx, s); err != nil {
		return err
	}
	if err := t.services(ctx, s); err != nil {
		return err
	}
	if err := t.category(ctx, s); err != nil {
		return err
	}
	return t.confirm(ctx, s)
}

func (t *terminal) form(ctx context.Context, s *wizard.Session) error {
	tiers := make([]string, len(v1.SalesTiers))
	for i, tier := range v1.SalesTiers {
		tiers[i] = string(tier)
	}

	for {
		var (
			form wizard.Form
			err  error
		)
		if form.Name, err = t.readLine("Nombre completo"); err != nil {
			return err
		}
		if form.RUT, err = t.readRUT("RUT"); err != nil {
			return err
		}
		if form.CompanyRUT, err = t.readRUT("RUT empresa (vacío si no tienes)"); err != nil {
			return err
		}
		form.NoCompanyRUT = form.CompanyRUT == ""
		if form.Phone, err = t.readLine("Teléfono (+569XXXXXXXX)"); err != nil {
			return err
		}
		if form.Email, err = t.readLine("Email"); err != nil {
			return err
		}
		if form.SalesTier, err = t.choose("Nivel de ventas", tiers, false); err != nil {
			return err
		}

		err = s.SubmitForm(ctx, form)
		var verr *wizard.ValidationError
		if !errors.As(err, &verr) {
			return err
		}

		fields := make([]string, 0, len(verr.Fields))
		for field := range verr.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			t.printf("  %s: %s\n", field, verr.Fields[field])
		}
	}
}

// readRUT пропускает ввод через клавиатуру RUT, чтобы получить отформатированное значение.
func (t *terminal) readRUT(prompt string) (string, error) {
	line, err := t.readLine(prompt)
	if err != nil {
		return "", err
	}
	keypad := wizard.NewKeypad(wizard.KeypadRUT, "")
	keypad.Paste(line)
	return keypad.Value(), nil
}

func (t *terminal) services(ctx context.Context, s *wizard.Session) error {
	answers := []string{string(v1.InterestYes), string(v1.InterestNo)}

	mentorship, err := t.choose("¿Te interesan las mentorías?", answers, false)
	if err != nil {
		return err
	}
	activation, err := t.choose("¿Te interesa jugar la activación?", answers, false)
	if err != nil {
		return err
	}
	return s.SelectServices(ctx, v1.Interest(mentorship), v1.Interest(activation))
}

func (t *terminal) category(ctx context.Context, s *wizard.Session) error {
	options := make([]string, len(v1.Categories))
	for i, c := range v1.Categories {
		options[i] = string(c)
	}

	category, err := t.choose("Categoría de mentoría (Enter para omitir)", options, true)
	if err != nil {
		return err
	}
	return s.SelectCategory(ctx, category)
}

func (t *terminal) confirm(ctx context.Context, s *wizard.Session) error {
	view, err := s.Confirm(ctx)
	var incomplete *wizard.DraftIncompleteError
	switch {
	case errors.As(err, &incomplete):
		t.printf("%s\n%s\n", wizard.LabelIncomplete, wizard.LabelIncompleteHint)
		if _, err := t.readLine("Volver al inicio (Enter)"); err != nil {
			return err
		}
		return s.ReturnToStart(ctx)
	case err != nil:
		return err
	}

	if view == wizard.ViewPending {
		t.printf("%s\n", wizard.LabelPending)
		if _, err := s.Wait(ctx); err != nil {
			return err
		}
	}

	confirmation := s.Confirmation()
	if confirmation.View == wizard.ViewFailed {
		t.printf("%s\n%s\n", wizard.LabelFailed, wizard.LabelAskStaff)
		if _, err := t.readLine("Personal de apoyo (Enter)"); err != nil {
			return err
		}
		if _, err := s.StaffHandoff(ctx); err != nil {
			return err
		}
		return s.ReturnToStart(ctx)
	}

	t.printf("%s\n%s\nQR: %s\n", confirmation.Label, wizard.LabelScanQR, confirmation.QR)
	if _, err := t.readLine("Volver al inicio (Enter)"); err != nil {
		return err
	}
	return s.ReturnToStart(ctx)
}
