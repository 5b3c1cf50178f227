package intake

import (
	"fmt"
	"strings"

	"github.com/moyoez/claimdesk/types"
)

const (
	MaxLabelFiles     = 3
	MaxLabelImageSize = 5 * 1024 * 1024
	MaxDamageImgSize  = 10 * 1024 * 1024
	MaxDamageVidSize  = 50 * 1024 * 1024
)

// Validate decides whether batch may be merged into a slot that currently
// holds current. It never mutates either argument. A nil return means accept.
func Validate(slot types.Slot, batch, current []types.MediaFile) error {
	if len(batch) == 0 {
		return ErrEmptyBatch
	}
	switch slot {
	case types.SlotLabel:
		return validateLabel(batch, current)
	case types.SlotDamage:
		return validateDamage(batch, current)
	default:
		return fmt.Errorf("unknown slot %q", slot)
	}
}

func validateLabel(batch, current []types.MediaFile) error {
	if len(batch)+len(current) > MaxLabelFiles {
		return reject(types.SlotLabel, ErrTooManyFiles,
			fmt.Sprintf("You can upload a maximum of %d label images.", MaxLabelFiles))
	}
	return validateImages(types.SlotLabel, batch, MaxLabelImageSize)
}

func validateDamage(batch, current []types.MediaFile) error {
	hasVideo := containsVideo(batch)
	hasExistingVideo := containsVideo(current)

	switch {
	case hasVideo && len(current) > 0 && !hasExistingVideo:
		return reject(types.SlotDamage, ErrMixedMedia, "Cannot mix videos and images. Please clear your selection first.")
	case hasExistingVideo && !hasVideo:
		return reject(types.SlotDamage, ErrMixedMedia, "Cannot mix videos and images. Please clear your selection first.")
	case hasVideo && len(batch) > 1:
		return reject(types.SlotDamage, ErrVideoBatch, "Please upload either a single video or multiple images, not both.")
	case hasVideo:
		v := batch[0]
		if v.Size > MaxDamageVidSize {
			return reject(types.SlotDamage, ErrFileTooLarge,
				fmt.Sprintf("Video file '%s' is too large. Maximum size is 50MB.", v.Name), v.Name)
		}
		return nil
	default:
		return validateImages(types.SlotDamage, batch, MaxDamageImgSize)
	}
}

func validateImages(slot types.Slot, batch []types.MediaFile, maxSize int64) error {
	var invalid, oversized []string
	for _, f := range batch {
		if !types.IsAllowedImageType(f.Type) {
			invalid = append(invalid, f.Name)
		}
	}
	if len(invalid) > 0 {
		return reject(slot, ErrUnsupportedType,
			fmt.Sprintf("Unsupported file type(s): %s. Only JPG and PNG images are supported.", strings.Join(invalid, ", ")),
			invalid...)
	}
	for _, f := range batch {
		if f.Size > maxSize {
			oversized = append(oversized, f.Name)
		}
	}
	if len(oversized) > 0 {
		return reject(slot, ErrFileTooLarge,
			fmt.Sprintf("File(s) too large: %s. Maximum size per image is %dMB.", strings.Join(oversized, ", "), maxSize/(1024*1024)),
			oversized...)
	}
	return nil
}

// containsVideo only counts the accepted video container; other video/*
// types fall through to the image checks and are reported as unsupported.
func containsVideo(files []types.MediaFile) bool {
	for _, f := range files {
		if types.IsAllowedVideoType(f.Type) {
			return true
		}
	}
	return false
}
