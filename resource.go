package psd

import (
	"fmt"
)

// Resource represents a single image resource block.
type Resource struct {
	Type string
	ID   uint16
	Name string
	Data []byte
}

// ResourceSection represents the image resources section. Blocks are
// kept in file order.
type ResourceSection struct {
	Blocks []*Resource
}

// Get returns the first block with the given resource ID, or nil.
func (r *ResourceSection) Get(id uint16) *Resource {
	for _, block := range r.Blocks {
		if block.ID == id {
			return block
		}
	}
	return nil
}

// Len returns the number of resource blocks.
func (r *ResourceSection) Len() int {
	return len(r.Blocks)
}

func parseResources(r *reader) (*ResourceSection, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read resources length: %w", err)
	}

	section := &ResourceSection{}
	blocks, err := r.Sub(int(length))
	if err != nil {
		return nil, fmt.Errorf("failed to read resources section: %w", err)
	}

	for !blocks.Empty() {
		resource, err := parseResource(blocks)
		if err != nil {
			return nil, fmt.Errorf("failed to parse resource: %w", err)
		}
		section.Blocks = append(section.Blocks, resource)
	}

	return section, nil
}

func parseResource(r *reader) (*Resource, error) {
	resourceType, err := r.ReadString(4)
	if err != nil {
		return nil, err
	}
	if resourceType != "8BIM" {
		return nil, fmt.Errorf("%w: invalid resource signature %q", ErrSignature, resourceType)
	}

	id, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	nameLen, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	name, err := r.ReadString(int(nameLen))
	if err != nil {
		return nil, err
	}
	// The length byte plus name occupy an even total.
	if err := r.Skip(nameAdvance(int(nameLen)) - int(nameLen)); err != nil {
		return nil, err
	}

	dataSize, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytes(int(dataSize))
	if err != nil {
		return nil, err
	}
	// Data is padded to an even length.
	if err := r.Skip(padEven(int(dataSize)) - int(dataSize)); err != nil {
		return nil, err
	}

	return &Resource{
		Type: resourceType,
		ID:   id,
		Name: name,
		Data: data,
	}, nil
}
