package sections

import "errors"

var (
	ErrPageRequired            = errors.New("sections: page id required")
	ErrSectionIDRequired       = errors.New("sections: section id required")
	ErrPositionInvalid         = errors.New("sections: position cannot be negative")
	ErrSlotNotAllowed          = errors.New("sections: template not allowed in slot")
	ErrAnchorInvalid           = errors.New("sections: anchor is not a valid slug")
	ErrAnchorExists            = errors.New("sections: anchor already used on page")
	ErrVisibilityWindowInvalid = errors.New("sections: visible_until must be after visible_from")
)
