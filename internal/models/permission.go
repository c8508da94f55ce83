package models

// Permission is a bit-encoded capability set carried by a user.
// The value is stored as a signed 64-bit integer, so only the low
// 63 bits are usable.
type Permission int64

const (
	PermConfigureSystem Permission = 1 << 1

	PermReadUser        Permission = 1 << 4
	PermCreateUser      Permission = 1 << 5
	PermModifyUser      Permission = 1 << 6
	PermModifyOtherUser Permission = 1 << 7
	PermDeleteUser      Permission = 1 << 8

	PermReadArticle       Permission = 1 << 9
	PermPostArticle       Permission = 1 << 10
	PermEditArticle       Permission = 1 << 11
	PermEditOthersArticle Permission = 1 << 12

	PermReadCategory       Permission = 1 << 13
	PermCreateCategory     Permission = 1 << 14
	PermEditCategory       Permission = 1 << 15
	PermEditOthersCategory Permission = 1 << 16

	PermReadComment         Permission = 1 << 17
	PermWriteComment        Permission = 1 << 18
	PermReviewComment       Permission = 1 << 19
	PermReviewOthersComment Permission = 1 << 20
)

// PermSuperuser grants every permission bit.
const PermSuperuser Permission = 1<<63 - 1

// PermAuthor is the preset granted to regular authors.
const PermAuthor = PermReadArticle | PermPostArticle | PermEditArticle |
	PermReadCategory | PermCreateCategory | PermEditCategory |
	PermReadComment | PermWriteComment | PermReviewComment

// permissionNames maps each flag to its wire name, in bit order.
var permissionNames = []struct {
	flag Permission
	name string
}{
	{PermConfigureSystem, "CONFIGURE_SYSTEM"},
	{PermReadUser, "READ_USER"},
	{PermCreateUser, "CREATE_USER"},
	{PermModifyUser, "MODIFY_USER"},
	{PermModifyOtherUser, "MODIFY_OTHER_USER"},
	{PermDeleteUser, "DELETE_USER"},
	{PermReadArticle, "READ_ARTICLE"},
	{PermPostArticle, "POST_ARTICLE"},
	{PermEditArticle, "EDIT_ARTICLE"},
	{PermEditOthersArticle, "EDIT_OTHERS_ARTICLE"},
	{PermReadCategory, "READ_CATEGORY"},
	{PermCreateCategory, "CREATE_CATEGORY"},
	{PermEditCategory, "EDIT_CATEGORY"},
	{PermEditOthersCategory, "EDIT_OTHERS_CATEGORY"},
	{PermReadComment, "READ_COMMENT"},
	{PermWriteComment, "WRITE_COMMENT"},
	{PermReviewComment, "REVIEW_COMMENT"},
	{PermReviewOthersComment, "REVIEW_OTHERS_COMMENT"},
}

// FormatPermission converts a permission value to the list of flag
// names it contains.
func FormatPermission(value Permission) []string {
	names := make([]string, 0, len(permissionNames))
	for _, p := range permissionNames {
		if value&p.flag != 0 {
			names = append(names, p.name)
		}
	}
	return names
}

// ParsePermission converts a list of flag names to a permission value.
// Unknown names are ignored.
func ParsePermission(names []string) Permission {
	var value Permission
	for _, name := range names {
		for _, p := range permissionNames {
			if p.name == name {
				value |= p.flag
				break
			}
		}
	}
	return value
}
