package categorize

import "github.com/Veraticus/cardscan/internal/model"

// DefaultCategories returns the built-in category table in matching order.
func DefaultCategories() []model.Category {
	return []model.Category{
		{
			Name: "Food & Dining",
			Keywords: []string{
				"restaurant", "food", "dining", "cafe", "pizza", "burger", "starbucks", "mcdonalds",
				"subway", "delivery", "takeout", "bar", "pub", "bakery", "grocery", "supermarket",
				"market", "whole foods", "safeway", "kroger",
			},
			Patterns:      []string{`.*restaurant.*`, `.*food.*`, `.*cafe.*`, `.*pizza.*`},
			Subcategories: []string{"Restaurants", "Fast Food", "Groceries", "Coffee Shops", "Bars & Pubs"},
		},
		{
			Name: "Transportation",
			Keywords: []string{
				"gas", "fuel", "shell", "chevron", "bp", "exxon", "mobil", "uber", "lyft", "taxi",
				"metro", "bus", "train", "parking", "toll", "car", "auto", "repair", "maintenance",
			},
			Patterns:      []string{`.*gas.*`, `.*fuel.*`, `.*uber.*`, `.*lyft.*`},
			Subcategories: []string{"Gas & Fuel", "Ride Sharing", "Public Transit", "Parking", "Auto Repair"},
		},
		{
			Name: "Shopping",
			Keywords: []string{
				"amazon", "walmart", "target", "costco", "best buy", "home depot", "lowes", "macys",
				"nordstrom", "clothing", "shoes", "electronics", "books", "toys", "home", "garden",
			},
			Patterns:      []string{`.*amazon.*`, `.*walmart.*`, `.*target.*`},
			Subcategories: []string{"Online Shopping", "Department Stores", "Electronics", "Clothing", "Home & Garden"},
		},
		{
			Name: "Entertainment",
			Keywords: []string{
				"movie", "theater", "cinema", "netflix", "spotify", "apple music", "youtube", "game",
				"steam", "playstation", "xbox", "concert", "show", "ticket", "event",
			},
			Patterns:      []string{`.*movie.*`, `.*theater.*`, `.*netflix.*`, `.*spotify.*`},
			Subcategories: []string{"Movies", "Streaming Services", "Gaming", "Concerts", "Events"},
		},
		{
			Name: "Health & Fitness",
			Keywords: []string{
				"pharmacy", "cvs", "walgreens", "hospital", "doctor", "clinic", "medical", "gym",
				"fitness", "yoga", "health", "dental", "vision", "prescription",
			},
			Patterns:      []string{`.*pharmacy.*`, `.*medical.*`, `.*gym.*`, `.*fitness.*`},
			Subcategories: []string{"Pharmacy", "Medical", "Fitness", "Dental", "Vision"},
		},
		{
			Name: "Bills & Utilities",
			Keywords: []string{
				"electric", "electricity", "water", "gas", "utility", "phone", "internet", "cable",
				"verizon", "att", "tmobile", "comcast", "xfinity", "bill", "payment",
			},
			Patterns:      []string{`.*electric.*`, `.*utility.*`, `.*verizon.*`, `.*comcast.*`},
			Subcategories: []string{"Electricity", "Water", "Gas", "Internet", "Phone"},
		},
		{
			Name: "Travel",
			Keywords: []string{
				"hotel", "airline", "flight", "airport", "travel", "booking", "expedia", "airbnb",
				"rental", "car rental", "hertz", "enterprise", "vacation",
			},
			Patterns:      []string{`.*hotel.*`, `.*airline.*`, `.*flight.*`, `.*airbnb.*`},
			Subcategories: []string{"Hotels", "Flights", "Car Rental", "Vacation Rentals", "Travel Booking"},
		},
		{
			Name: "Finance",
			Keywords: []string{
				"bank", "atm", "fee", "interest", "transfer", "payment", "credit", "loan",
				"mortgage", "insurance", "investment", "financial",
			},
			Patterns:      []string{`.*bank.*`, `.*atm.*`, `.*fee.*`, `.*interest.*`},
			Subcategories: []string{"Banking Fees", "ATM", "Insurance", "Loans", "Investments"},
		},
		{
			Name: "Education",
			Keywords: []string{
				"school", "university", "college", "tuition", "education", "books", "supplies",
				"course", "class", "learning", "student",
			},
			Patterns:      []string{`.*school.*`, `.*university.*`, `.*education.*`},
			Subcategories: []string{"Tuition", "Books", "Supplies", "Courses", "Student Services"},
		},
		{
			Name: "Personal Care",
			Keywords: []string{
				"salon", "spa", "beauty", "cosmetics", "hair", "nail", "massage", "skincare",
				"personal", "hygiene", "grooming",
			},
			Patterns:      []string{`.*salon.*`, `.*spa.*`, `.*beauty.*`},
			Subcategories: []string{"Hair Care", "Skincare", "Spa Services", "Cosmetics", "Personal Hygiene"},
		},
		{
			Name:          model.FallbackCategory,
			Subcategories: []string{model.FallbackSubcategory, "Unknown", "Other"},
		},
	}
}
