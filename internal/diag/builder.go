package diag

func New(sev Severity, code Code, path, header, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Path:     path,
		Header:   header,
		Message:  msg,
	}
}

func NewError(code Code, path, header, msg string) Diagnostic {
	return New(SevError, code, path, header, msg)
}

func NewWarning(code Code, path, header, msg string) Diagnostic {
	return New(SevWarning, code, path, header, msg)
}

func (d Diagnostic) WithNote(msg string) Diagnostic {
	d.Notes = append(d.Notes, msg)
	return d
}
