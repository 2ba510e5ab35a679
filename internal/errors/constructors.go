package errors

// Convenience functions for common error patterns.

// Config errors

func ConfigPageInvalid(page string, cause error) *PublishError {
	return Wrap(cause, CategoryConfig, SeverityWarning, "publish configuration unreadable, using defaults").
		WithContext("page", page)
}

// Space errors

func PageNotFound(name string) *PublishError {
	return New(CategorySpace, SeverityFatal, "page not found").
		WithContext("page", name)
}

func PageUnreadable(name string, cause error) *PublishError {
	return Wrap(cause, CategorySpace, SeverityFatal, "page source unreadable").
		WithContext("page", name)
}

func AttachmentUnreadable(path string, cause error) *PublishError {
	return Wrap(cause, CategorySpace, SeverityWarning, "attachment unreadable, skipped").
		WithContext("attachment", path)
}

// Output errors

func OutputWriteError(path string, cause error) *PublishError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "output write failed").
		WithContext("path", path)
}

func TemplateCompileError(source string, cause error) *PublishError {
	return Wrap(cause, CategoryTemplate, SeverityFatal, "template compile failed").
		WithContext("source", source)
}

func RenderError(page string, cause error) *PublishError {
	return Wrap(cause, CategoryRender, SeverityFatal, "page render failed").
		WithContext("page", page)
}
