package reconcile

import "ordersync/internal/model"

const (
	attrPickupDate     = "Pickup-Date"
	attrShippingDate   = "Shipping-Date"
	attrPickupTime     = "Pickup-Time"
	attrCheckoutMethod = "Checkout-Method"

	propCakeWriting  = "Cake Writing"
	propWritingColor = "Writing-Color"
)

// Attribute returns the value of the first pair named name. The boolean is
// false when no pair matches or the matching pair carries no value.
func Attribute(attrs model.Attributes, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value.String, a.Value.Valid
		}
	}
	return "", false
}

// nonEmptyAttribute treats an empty value the same as a missing one.
func nonEmptyAttribute(attrs model.Attributes, name string) (string, bool) {
	v, ok := Attribute(attrs, name)
	return v, ok && v != ""
}
